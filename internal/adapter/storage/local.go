// Package storage keeps uploaded fine proofs on the local filesystem; the
// API serves the directory under /uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPath is the path the upload directory is served under.
const URLPath = "/uploads"

type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir when missing. baseURL is the public origin,
// e.g. "http://localhost:8080"; empty keeps URLs relative.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Save writes body to a new file called name and returns its public URL.
func (s *LocalStore) Save(ctx context.Context, name string, body io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	clean := filepath.Base(name)
	if clean == "." || clean == string(filepath.Separator) || clean != name {
		return "", 0, fmt.Errorf("invalid file name %q", name)
	}
	full := filepath.Join(s.dir, clean)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", clean, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, fmt.Errorf("write %s: %w", clean, err)
	}
	return s.baseURL + path.Join(URLPath, clean), n, nil
}

// Remove deletes the file behind a URL returned by Save. Missing files are
// not an error.
func (s *LocalStore) Remove(_ context.Context, url string) error {
	marker := URLPath + "/"
	i := strings.LastIndex(url, marker)
	if i < 0 {
		return fmt.Errorf("not a stored proof url: %q", url)
	}
	name := url[i+len(marker):]
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("not a stored proof url: %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
