package client

import (
	"fmt"
	"net/http"
)

const (
	// DefaultContentType is used for text bodies declared without a content type.
	DefaultContentType = "text/plain"
	// ContentTypeJSON is sent with every typed helper payload.
	ContentTypeJSON = "application/json"
	// ContentTypeOctetStream is the content type of the uploaded file part.
	ContentTypeOctetStream = "application/octet-stream"
	// FileFieldName is the multipart form field carrying an uploaded file.
	FileFieldName = "file"
	// DefaultRequestIDHeader is the header populated by [WithRequestID] when no name is given.
	DefaultRequestIDHeader = "X-Request-ID"
)

// unreadableBody replaces the response text in a failure
// message when the error response body cannot be read.
const unreadableBody = "unable to read body"

// ErrorFactory builds the caller's error kind from a translated failure message.
type ErrorFactory[E error] func(message string) E

// failureMessage renders the message handed to the [ErrorFactory]
// for a non-2xx response.
func failureMessage(path string, statusCode int, body string) string {
	return fmt.Sprintf("[%s] (%d): %s", path, statusCode, body)
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
