// Package selector implements interactive format selection: it offers the
// video formats of a link as buttons and turns an accepted choice into a
// regular download request.
//
// An offer moves from Offered to Selected or Expired. Selections carry no
// server-side state: the button token is the format id, the link and the
// requester come from the message the offer replies to, and expiry is
// measured from the offer message timestamp.
package selector
