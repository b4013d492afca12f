package types

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the ingest and query pipeline. Handlers map
// them to HTTP status codes with errors.Is / errors.As; the causal message
// is carried by wrapping.
var (
	ErrInvalidURL   = errors.New("invalid pdf url")
	ErrNotAPDF      = errors.New("content is not a pdf")
	ErrInvalidPDF   = errors.New("invalid pdf document")
	ErrUnparsable   = errors.New("no extractable text in document")
	ErrNoResults    = errors.New("no results found")
	ErrFileNotFound = errors.New("file not found")
)

// FetchError wraps a transport-level failure (timeout, DNS, non-2xx,
// connection reset) together with the origin URL for diagnostics.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
