// Package storage persists generated image bytes and hands back stable
// public URLs for them.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore accepts raw image bytes and returns a public URL.
type ObjectStore interface {
	// Put writes the image under the given id and returns its public URL.
	Put(id string, data []byte, mimeType string) (string, error)
}

// Fetcher resolves a previously returned public URL back to raw bytes.
// Implemented by stores whose URLs it can map to local objects.
type Fetcher interface {
	Fetch(url string) (data []byte, mimeType string, err error)
}

// FileStore is a filesystem-backed object store. Files are written under a
// directory served by the HTTP layer at BaseURL.
type FileStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewFileStore creates the store and ensures the directory exists.
func NewFileStore(dir, baseURL string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "storage"),
	}, nil
}

// Dir returns the directory files are written to, for the HTTP file server.
func (s *FileStore) Dir() string { return s.dir }

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// Put writes the image and returns its public URL.
func (s *FileStore) Put(id string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty image %s", id)
	}

	name := id + extensionFor(mimeType)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", path, err)
	}

	s.logger.Debug("Image stored", "path", path, "bytes", len(data))
	return s.baseURL + "/" + name, nil
}

func mimeFor(name string) string {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// Fetch reads back an object previously stored under a URL this store
// produced.
func (s *FileStore) Fetch(url string) ([]byte, string, error) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return nil, "", fmt.Errorf("url %s was not produced by this store", url)
	}

	name := filepath.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read stored image %s: %w", name, err)
	}
	return data, mimeFor(name), nil
}
