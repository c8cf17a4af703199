package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore saves images on the local filesystem, served under urlPrefix.
// Used when S3 storage is not configured.
type LocalStore struct {
	dir       string // e.g. "static/images"
	urlPrefix string // e.g. "/static/images"
}

// NewLocalStore creates the target directory and returns a LocalStore
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Save writes the image to disk and returns its serving URL
func (s *LocalStore) Save(_ context.Context, key string, body io.Reader, _ string, _ int64) (string, error) {
	dst := filepath.Join(s.dir, filepath.Base(key))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}

	return s.urlPrefix + "/" + filepath.Base(key), nil
}

// Remove deletes a previously saved image; missing files are not an error
func (s *LocalStore) Remove(_ context.Context, url string) error {
	name := filepath.Base(url)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
