package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ToFile writes the content opened by src to destPath. Data streams to a
// temp file in the same directory, which is renamed to destPath on success
// and removed on any failure.
func ToFile(ctx context.Context, src Source, destPath string, logger *slog.Logger, optFns ...Option) error {
	if destPath == "" {
		return ErrEmptyDestination
	}

	var s settings
	for _, opt := range optFns {
		if err := opt(&s); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if s.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("skipping existing file", "path", destPath)
			return nil
		}
	}

	body, size, err := src(ctx)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer func() {
		if err := body.Close(); err != nil {
			logger.Error("failed to close source", "error", err)
		}
	}()

	return write(ctx, body, size, destPath, logger, s)
}

func write(ctx context.Context, body io.Reader, size int64, destPath string, logger *slog.Logger, s settings) error {
	file, err := os.CreateTemp(filepath.Dir(destPath), ".apiclient-dl-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var w io.Writer = file
	if s.checksum != nil {
		w = io.MultiWriter(w, s.checksum)
	}

	if s.progress {
		w = &progressWriter{
			w:         w,
			logger:    logger,
			dest:      destPath,
			total:     size,
			startTime: time.Now(),
		}
	}

	n, err := io.Copy(w, &contextReader{ctx: ctx, r: body})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		}

		return fmt.Errorf("copying content: %w", err)
	}

	if size >= 0 && n != size {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", size, n),
		}
	}

	if err := s.checksum.verify(); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}
