// Package progress rate-limits user-visible progress edits per request.
//
// Producers (the download executor, the transcoder) push Events onto a
// channel; a Throttle consumes the channel for one request key and lets at
// most one edit through per interval. The per-key State lives behind the
// Store interface so the in-process map can be replaced by a shared store.
package progress
