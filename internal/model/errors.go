package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage indicates the message carried no URL to work on.
	ErrUsage = errors.New("usage error")
	// ErrInvalidURL indicates the URL failed structural or platform validation.
	ErrInvalidURL = errors.New("invalid url")
	// ErrSizeLimitExceeded indicates the extractor aborted because the media is over the size ceiling.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
	// ErrUnauthorized indicates someone other than the requester answered a format selection.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSelectionExpired indicates the format offer is older than the selection TTL.
	ErrSelectionExpired = errors.New("selection expired")
	// ErrInvalidSelection indicates a malformed selection token.
	ErrInvalidSelection = errors.New("invalid selection")
)

// ExtractionError wraps any probe or fetch failure of the extraction collaborator.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed url=%s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TranscodeError carries the post-processing stage that failed.
type TranscodeError struct {
	Stage string
	Err   error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode stage=%s failed: %v", e.Stage, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// DeliveryError wraps a failed transport operation.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery op=%s failed: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
