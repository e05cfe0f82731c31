package models

import "errors"

// Store side.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")
)

// Client side. The first three are local validation errors and never reach the network.
var (
	ErrMissingFile       = errors.New("missing file")
	ErrMissingMetadata   = errors.New("missing metadata")
	ErrInvalidIdentifier = errors.New("invalid identifier")

	ErrVideoNotFound    = errors.New("video not found")
	ErrUnexpectedStatus = errors.New("unexpected status")
)
