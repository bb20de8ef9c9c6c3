package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStorage keeps every object as a plain file directly under root
type LocalStorage struct {
	root string
}

// EnsureDir creates the storage root and its parents. It is meant to run once
// at process startup.
func EnsureDir(root string) error {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage root unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %s is not a directory", abs)
	}

	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) Save(name string, r io.Reader) (string, int64, error) {
	err := validName(name)
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// Don't leave a truncated file behind
		removeErr := os.Remove(path)
		if removeErr != nil {
			slog.Error("failed to remove partial file", "error", removeErr, "path", path)
		}
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return path, size, nil
}

func (s *LocalStorage) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to delete file: %w", err)
}
