// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"errors"
	"fmt"
)

// Import failures. Each one rejects the import and is surfaced verbatim to
// the caller; ErrDownloadCancelled is kept distinct so callers can treat a
// user-initiated cancellation differently from a failure.
var (
	ErrInvalidReference   = errors.New("invalid reference")
	ErrUnsupportedContent = errors.New("unsupported content: not a PDF document")
	ErrNetwork            = errors.New("network failure")
	ErrTooManyRedirects   = errors.New("too many redirects")
	ErrDownloadCancelled  = errors.New("download cancelled")
	ErrFileNotFound       = errors.New("file not found")
	ErrEmptyFile          = errors.New("file is empty")
)

// HTTPError reports a non-2xx response from a download.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}
