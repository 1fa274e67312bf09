package client_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamwoolhether/apiclient/client"
)

func TestClient_Download(t *testing.T) {
	const payload = "file contents for download"
	sum := sha256.Sum256([]byte(payload))
	goodSum := hex.EncodeToString(sum[:])

	testCases := []struct {
		name   string
		status int
		opts   []client.DownloadOption
		expErr error
	}{
		{
			name:   "basic",
			status: http.StatusOK,
		},
		{
			name:   "checksum pass",
			status: http.StatusOK,
			opts:   []client.DownloadOption{client.WithChecksum(sha256.New(), goodSum)},
		},
		{
			name:   "checksum fail",
			status: http.StatusOK,
			opts:   []client.DownloadOption{client.WithChecksum(sha256.New(), "deadbeef")},
			expErr: client.ErrChecksumMismatch,
		},
		{
			name:   "with progress",
			status: http.StatusOK,
			opts:   []client.DownloadOption{client.WithProgress()},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts, rec := newTestServer(t, tc.status, payload)
			c := newClient(t, ts.URL)

			dest := filepath.Join(t.TempDir(), "out.bin")

			err := c.Download(t.Context(), "files/out.bin", dest, tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("expected %v, got: %v", tc.expErr, err)
				}

				var dlErr *client.DownloadError
				if !errors.As(err, &dlErr) {
					t.Errorf("expected *client.DownloadError, got %T", err)
				}

				if _, statErr := os.Stat(dest); !errors.Is(statErr, os.ErrNotExist) {
					t.Errorf("expected no file at %s after failure", dest)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("reading downloaded file: %v", err)
			}
			if string(got) != payload {
				t.Errorf("expected %q, got %q", payload, got)
			}

			if p := rec.last(t).path; p != "/files/out.bin" {
				t.Errorf("expected path /files/out.bin, got %s", p)
			}
		})
	}
}

func TestClient_Download_NotFound(t *testing.T) {
	ts, _ := newTestServer(t, http.StatusNotFound, "no such file")
	c := newClient(t, ts.URL)

	dir := t.TempDir()
	dest := filepath.Join(dir, "missing.bin")

	err := c.Download(t.Context(), "files/missing.bin", dest)

	var domainErr *apiError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected *apiError, got %T: %v", err, err)
	}
	if exp := "[files/missing.bin] (404): no such file"; domainErr.Error() != exp {
		t.Errorf("expected %q, got %q", exp, domainErr.Error())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty directory, found %d entries", len(entries))
	}
}

func TestClient_Download_SkipExisting(t *testing.T) {
	ts, rec := newTestServer(t, http.StatusOK, "new contents")
	c := newClient(t, ts.URL)

	dest := filepath.Join(t.TempDir(), "kept.txt")
	if err := os.WriteFile(dest, []byte("old contents"), 0o600); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	if err := c.Download(t.Context(), "kept.txt", dest, client.WithSkipExisting()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := rec.count(); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != "old contents" {
		t.Errorf("expected file to be untouched, got %q", got)
	}
}
