package domain

import "errors"

// Error taxonomy for the pipeline. Parsing and index errors are reported
// per file at the ingestion boundary; generation errors always trigger the
// deterministic fallback. ErrPreconditionMissing is the only class that
// surfaces to the caller unmodified.
var (
	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNotFound indicates a path-only parse invocation for a missing file.
	ErrNotFound = errors.New("file not found")

	// ErrMalformedInput indicates content that failed to parse (PDF, JSON).
	ErrMalformedInput = errors.New("malformed input")

	// ErrGeneration wraps any generator provider, network or auth failure.
	ErrGeneration = errors.New("generation failed")

	// ErrIndexIO wraps a persisted-store read or write failure.
	ErrIndexIO = errors.New("index storage failure")

	// ErrPreconditionMissing indicates a required input, such as the checkout
	// DOM, was never supplied. There is no safe fallback for it.
	ErrPreconditionMissing = errors.New("precondition missing")
)
