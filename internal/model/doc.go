package model

// Package model defines domain data structures shared by the pipeline: requests,
// request keys, format descriptors, artifacts, message references, status enums
// and the error taxonomy. Structures are plain values with explicit state
// transitions so they can be snapshotted for the status API.
