package client

import (
	"errors"
)

var (
	// ErrUnexpectedStatusCode is the sentinel wrapped by [APIError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrInvalidBaseURL is returned by [Build] when the base url is empty or not absolute.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrNilErrorFactory is returned by [Build] when no error factory is supplied.
	ErrNilErrorFactory = errors.New("error factory must not be nil")
	// ErrInvalidFileBody is returned when a [File] body has no reader or no file name.
	ErrInvalidFileBody = errors.New("invalid file body")
	// ErrEncode wraps failures serializing a typed request payload.
	ErrEncode = errors.New("encoding json payload")
	// ErrDecode wraps failures deserializing a typed response.
	ErrDecode = errors.New("decoding json response")
)

// APIError is a ready-made error kind for callers without a domain error
// type of their own. Pass [NewAPIError] to [Build] as the error factory.
type APIError struct {
	Message string
	Err     error
}

// NewAPIError builds an *APIError from a translated failure message.
func NewAPIError(message string) *APIError {
	return &APIError{
		Message: message,
		Err:     ErrUnexpectedStatusCode,
	}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}
