package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/apiclient/internal/validate"
)

// GetAsString issues a GET and returns the body as text.
func (c *Client[E]) GetAsString(ctx context.Context, path string) (string, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

// GetAsStream issues a GET and returns the unread body. The caller must close it.
func (c *Client[E]) GetAsStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return c.SendStream(ctx, http.MethodGet, path, nil)
}

// Get issues a GET and decodes the JSON response into T.
func Get[T any, E error](ctx context.Context, c *Client[E], path string) (T, error) {
	return receiveJSON[T](ctx, c, http.MethodGet, path, nil)
}

// PostAsString posts body with the given content type and returns the response text.
func (c *Client[E]) PostAsString(ctx context.Context, path, body, contentType string) (string, error) {
	return c.Send(ctx, http.MethodPost, path, Text(body, contentType))
}

// PostAsStream posts body with the given content type and returns the unread response.
// The caller must close it.
func (c *Client[E]) PostAsStream(ctx context.Context, path, body, contentType string) (io.ReadCloser, error) {
	return c.SendStream(ctx, http.MethodPost, path, Text(body, contentType))
}

// Post sends in as JSON and decodes the JSON response into T.
func Post[T any, E error](ctx context.Context, c *Client[E], path string, in any) (T, error) {
	return exchangeJSON[T](ctx, c, http.MethodPost, path, in)
}

// Post sends in as JSON and discards the response. A nil in sends an empty body.
func (c *Client[E]) Post(ctx context.Context, path string, in any) error {
	return c.fire(ctx, http.MethodPost, path, in)
}

// PostFile uploads r as the "file" part of a multipart form and discards the response.
func (c *Client[E]) PostFile(ctx context.Context, path string, r io.Reader, fileName string) error {
	_, err := c.Send(ctx, http.MethodPost, path, File(r, fileName))
	return err
}

// PutAsString puts body with the given content type and returns the response text.
func (c *Client[E]) PutAsString(ctx context.Context, path, body, contentType string) (string, error) {
	return c.Send(ctx, http.MethodPut, path, Text(body, contentType))
}

// Put sends in as JSON and decodes the JSON response into T.
func Put[T any, E error](ctx context.Context, c *Client[E], path string, in any) (T, error) {
	return exchangeJSON[T](ctx, c, http.MethodPut, path, in)
}

// Put sends in as JSON and discards the response. A nil in sends an empty body.
func (c *Client[E]) Put(ctx context.Context, path string, in any) error {
	return c.fire(ctx, http.MethodPut, path, in)
}

// PatchAsString patches body with the given content type and returns the response text.
func (c *Client[E]) PatchAsString(ctx context.Context, path, body, contentType string) (string, error) {
	return c.Send(ctx, http.MethodPatch, path, Text(body, contentType))
}

// Patch sends in as JSON and decodes the JSON response into T.
func Patch[T any, E error](ctx context.Context, c *Client[E], path string, in any) (T, error) {
	return exchangeJSON[T](ctx, c, http.MethodPatch, path, in)
}

// Patch sends in as JSON and discards the response. A nil in sends an empty body.
func (c *Client[E]) Patch(ctx context.Context, path string, in any) error {
	return c.fire(ctx, http.MethodPatch, path, in)
}

// DeleteAsString issues a DELETE and returns the response text.
func (c *Client[E]) DeleteAsString(ctx context.Context, path string) (string, error) {
	return c.Send(ctx, http.MethodDelete, path, nil)
}

// Delete issues a DELETE and decodes the JSON response into T.
func Delete[T any, E error](ctx context.Context, c *Client[E], path string) (T, error) {
	return receiveJSON[T](ctx, c, http.MethodDelete, path, nil)
}

// exchangeJSON always serializes in, so a nil in is sent as "null".
func exchangeJSON[T any, E error](ctx context.Context, c *Client[E], method, path string, in any) (T, error) {
	body, err := c.jsonBody(in)
	if err != nil {
		var zero T
		return zero, err
	}

	return receiveJSON[T](ctx, c, method, path, body)
}

func receiveJSON[T any, E error](ctx context.Context, c *Client[E], method, path string, body Body) (T, error) {
	var out T

	text, err := c.Send(ctx, method, path, body)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return out, nil
}

func (c *Client[E]) fire(ctx context.Context, method, path string, in any) error {
	body := Text("", ContentTypeJSON)
	if in != nil {
		var err error
		if body, err = c.jsonBody(in); err != nil {
			return err
		}
	}

	_, err := c.Send(ctx, method, path, body)
	return err
}

func (c *Client[E]) jsonBody(in any) (Body, error) {
	if c.validate {
		if err := validate.Check(in); err != nil {
			return nil, fmt.Errorf("validating payload: %w", err)
		}
	}

	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return Text(string(b), ContentTypeJSON), nil
}
