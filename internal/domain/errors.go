package domain

import "errors"

// Kind classifies a failure at the service boundary. Collaborator adapters
// tag their errors with a kind so the HTTP layer can map them to status
// codes without inspecting message text.
type Kind string

const (
	KindProviderError         Kind = "provider_error"
	KindMalformedSeries       Kind = "malformed_series"
	KindSummarizerUnavailable Kind = "summarizer_unavailable"
)

// Error pairs a failure kind with its cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a failure kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the failure kind carried by err, or "" when it has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
