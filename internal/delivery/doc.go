// Package delivery wraps the chat transport behind the narrow operations the
// pipeline needs: status reporting, result delivery and status finalization.
// Transport failures are returned as model.DeliveryError and never retried.
package delivery
