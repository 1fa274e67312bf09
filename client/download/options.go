package download

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Option configures a single [ToFile] call.
type Option func(*settings) error

type settings struct {
	checksum     *checksum
	progress     bool
	skipExisting bool
}

// WithChecksum validates the written bytes against expected, the
// hex-encoded digest h is expected to produce (e.g. sha256.New()).
func WithChecksum(h hash.Hash, expected string) Option {
	return func(s *settings) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		s.checksum = &checksum{hash: h, expected: expected}
		return nil
	}
}

// WithProgress logs transfer progress at most once per second.
func WithProgress() Option {
	return func(s *settings) error {
		s.progress = true
		return nil
	}
}

// WithSkipExisting makes [ToFile] return nil without opening the
// [Source] when the destination already exists.
func WithSkipExisting() Option {
	return func(s *settings) error {
		s.skipExisting = true
		return nil
	}
}

// checksum hashes everything written through it.
type checksum struct {
	hash     hash.Hash
	expected string
}

func (c *checksum) Write(p []byte) (int, error) {
	return c.hash.Write(p)
}

func (c *checksum) verify() error {
	if c == nil {
		return nil
	}

	actual := hex.EncodeToString(c.hash.Sum(nil))
	if actual != c.expected {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", c.expected, actual),
		}
	}

	return nil
}
