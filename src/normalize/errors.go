package normalize

import (
	"errors"
	"fmt"
)

// Kind classifies why an upload could not be normalized.
type Kind string

const (
	KindUnsupported Kind = "unsupported"
	KindTooLarge    Kind = "too_large"
	KindParse       Kind = "parse"
	KindIO          Kind = "io"
)

var (
	ErrEmptyName = errors.New("upload has no file name")
	ErrNoContent = errors.New("upload has no content reader")
	ErrTooLarge  = errors.New("file too large")
)

// NormalizationError reports a malformed, unreadable or disallowed upload.
// It is recoverable: the session keeps running and the user can try again.
type NormalizationError struct {
	Name string
	Kind Kind
	Err  error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %q (%s): %v", e.Name, e.Kind, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

func newError(name string, kind Kind, err error) *NormalizationError {
	return &NormalizationError{Name: name, Kind: kind, Err: err}
}
