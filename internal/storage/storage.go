package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cfg "github.com/boardadmin/boardadmin/internal/config"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrInvalidName    = errors.New("invalid object name")
)

// Storage defines the blob operations attachments need
type Storage interface {
	// Save writes r under name and returns the location to persist and the
	// number of bytes written. It fails if name already exists.
	Save(name string, r io.Reader) (path string, size int64, err error)

	// Open returns the content stored at path. Missing objects return
	// ErrObjectNotFound.
	Open(path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(path string) error
}

// New creates the storage backend selected by STORAGE_DRIVER.
// The local root directory must already exist (see EnsureDir).
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			Prefix:    c.S3Prefix,
		})
	case "local", "":
		slog.Info("initializing local storage", "root", c.StorageRoot)
		return NewLocalStorage(c.StorageRoot)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
