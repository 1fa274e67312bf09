package client

import (
	"fmt"
	"io"
	"net/http"
)

// Content is the body of a successful response. It is owned by the
// caller, who must either consume it with [Content.Text] or Close it.
type Content struct {
	resp *http.Response
}

func (c *Content) Read(p []byte) (int, error) {
	return c.resp.Body.Read(p)
}

// Close releases the underlying response body.
func (c *Content) Close() error {
	return c.resp.Body.Close()
}

// Text reads the remaining content as a string and closes it.
func (c *Content) Text() (string, error) {
	b, err := io.ReadAll(c.resp.Body)
	closeErr := c.resp.Body.Close()

	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing content: %w", closeErr)
	}

	return string(b), nil
}

// Header returns the response headers.
func (c *Content) Header() http.Header {
	return c.resp.Header
}

// StatusCode returns the 2xx status the server answered with.
func (c *Content) StatusCode() int {
	return c.resp.StatusCode
}

// Size returns the advertised content length, or -1 when unknown.
func (c *Content) Size() int64 {
	return c.resp.ContentLength
}
