package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// Body is the payload of a single request. It holds exactly one
// representation: nothing, a text value, or a file upload.
// Construct one with [Empty], [Text] or [File]. A nil Body sends no body.
type Body interface {
	// encode returns the request body reader and its Content-Type.
	// A nil reader means the request carries no body.
	encode() (io.Reader, string, error)
}

type emptyBody struct{}

// Empty returns a Body that sends nothing.
func Empty() Body { return emptyBody{} }

func (emptyBody) encode() (io.Reader, string, error) {
	return nil, "", nil
}

// TextBody is a UTF-8 text payload sent with its declared content type.
type TextBody struct {
	Value       string
	ContentType string
}

// Text returns a Body sending value verbatim. An empty contentType
// falls back to [DefaultContentType].
func Text(value, contentType string) Body {
	return TextBody{Value: value, ContentType: contentType}
}

func (b TextBody) encode() (io.Reader, string, error) {
	contentType := b.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	return strings.NewReader(b.Value), contentType, nil
}

// FileBody uploads the contents of Reader as a multipart/form-data
// request with a single part named [FileFieldName].
type FileBody struct {
	Reader   io.Reader
	FileName string
}

// File returns a Body uploading r under fileName.
func File(r io.Reader, fileName string) Body {
	return FileBody{Reader: r, FileName: fileName}
}

func (b FileBody) encode() (io.Reader, string, error) {
	if b.Reader == nil {
		return nil, "", fmt.Errorf("%w: reader must not be nil", ErrInvalidFileBody)
	}
	if b.FileName == "" {
		return nil, "", fmt.Errorf("%w: file name must not be empty", ErrInvalidFileBody)
	}

	var payload bytes.Buffer
	w := multipart.NewWriter(&payload)

	// CreateFormFile sets the part's Content-Type to application/octet-stream.
	part, err := w.CreateFormFile(FileFieldName, b.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err := io.Copy(part, b.Reader); err != nil {
		return nil, "", fmt.Errorf("copying file %q: %w", b.FileName, err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &payload, w.FormDataContentType(), nil
}

// SelectBody picks a single Body from optional text and file inputs.
// text wins whenever it is non-nil, even if a file is also supplied.
// The file is used only when text is nil, file is non-nil and fileName
// is non-empty. Otherwise the request has no body.
func SelectBody(text *string, contentType string, file io.Reader, fileName string) Body {
	switch {
	case text != nil:
		return Text(*text, contentType)
	case file != nil && fileName != "":
		return File(file, fileName)
	default:
		return Empty()
	}
}
