package extract

import "fmt"

// ErrorKind classifies extraction failures. Kinds are recoverable via
// fallback in auto mode and fatal in restricted modes.
type ErrorKind string

const (
	KindVisionUnavailable ErrorKind = "vision_unavailable"
	KindVisionMalformed   ErrorKind = "vision_malformed"
	KindTextUnusable      ErrorKind = "text_unusable"
)

// Error is a typed extraction failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with an extraction error kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
