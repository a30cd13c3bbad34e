package model

// RequestStatus represents the lifecycle stage of a media request
type RequestStatus string

const (
	// RequestStatusValidating means the input is being checked
	RequestStatusValidating RequestStatus = "Validating"

	// RequestStatusFetching means the extractor is downloading media
	RequestStatusFetching RequestStatus = "Fetching"

	// RequestStatusPostProcessing means the video is being compressed or converted
	RequestStatusPostProcessing RequestStatus = "PostProcessing"

	// RequestStatusDelivering means the artifact is being sent to the chat
	RequestStatusDelivering RequestStatus = "Delivering"

	// RequestStatusDone means the artifact was delivered
	RequestStatusDone RequestStatus = "Done"

	// RequestStatusFailed means the request ended with an error
	RequestStatusFailed RequestStatus = "Failed"
)

// String returns the string representation of RequestStatus
func (rs RequestStatus) String() string {
	return string(rs)
}

// IsActive returns true if the request is doing work
func (rs RequestStatus) IsActive() bool {
	return rs == RequestStatusFetching || rs == RequestStatusPostProcessing || rs == RequestStatusDelivering
}

// IsFinished returns true if the request reached a terminal state (done or failed)
func (rs RequestStatus) IsFinished() bool {
	return rs == RequestStatusDone || rs == RequestStatusFailed
}

// CanTransition reports whether moving from rs to next follows the request lifecycle.
// Any non-terminal state may fail; otherwise states only move forward.
func (rs RequestStatus) CanTransition(next RequestStatus) bool {
	if rs.IsFinished() {
		return false
	}
	if next == RequestStatusFailed {
		return true
	}
	return statusOrder[next] > statusOrder[rs]
}

var statusOrder = map[RequestStatus]int{
	RequestStatusValidating:     0,
	RequestStatusFetching:       1,
	RequestStatusPostProcessing: 2,
	RequestStatusDelivering:     3,
	RequestStatusDone:           4,
}
