// Package api serves a read-only HTTP view of the requests the bot is
// working on.
package api
