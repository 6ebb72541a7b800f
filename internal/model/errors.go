package model

import "errors"

// Sentinel errors shared by repositories and services. Handlers map these to
// HTTP status codes; the dispatcher treats ErrNotFound and ErrConflict as
// benign races (record deleted or already resolved by another instance).
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
