// Package platform contains OS and input glue used by the pipeline: artifact
// file helpers (directory setup, prefix lookup and prefix sweep) and URL
// normalization with platform-specific structural checks.
package platform
