package pdfdoc

import "errors"

var (
	// ErrMalformedDocument is returned when bytes cannot be opened, parsed or
	// rewritten as a PDF document.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrPageTraversal marks a text box whose internal structure is
	// inconsistent. Callers skip the box and continue.
	ErrPageTraversal = errors.New("page traversal fault")
	// ErrClosed is returned by operations on a closed document.
	ErrClosed = errors.New("document closed")
)
