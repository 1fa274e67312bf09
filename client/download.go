package client

import (
	"context"
	"fmt"
	"hash"
	"io"
	"net/http"

	"github.com/adamwoolhether/apiclient/client/download"
)

// Re-exports from [download].

type (
	// DownloadOption configures [Client.Download].
	DownloadOption = download.Option
	// DownloadError wraps a sentinel error with additional detail.
	DownloadError = download.Error
)

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch
	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch
	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// WithChecksum enables checksum validation of the downloaded file.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress enables periodic download progress logging.
func WithProgress() DownloadOption { return download.WithProgress() }

// WithSkipExisting skips the request entirely when destPath already exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }

// Download issues a GET for path and streams the content to destPath.
// A non-2xx response fails with an error of kind E and leaves destPath untouched.
func (c *Client[E]) Download(ctx context.Context, path, destPath string, opts ...DownloadOption) error {
	src := func(ctx context.Context) (io.ReadCloser, int64, error) {
		content, err := c.SendRaw(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, 0, err
		}

		return content, content.Size(), nil
	}

	if err := download.ToFile(ctx, src, destPath, c.logger, opts...); err != nil {
		return fmt.Errorf("download %s: %w", path, err)
	}

	return nil
}
