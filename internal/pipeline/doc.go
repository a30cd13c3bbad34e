// Package pipeline drives a media request from the first status message to
// delivery. Every request, successful or not, ends with a sweep of its
// prefixed artifacts.
package pipeline
