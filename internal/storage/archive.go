// Package storage provides the optional filesystem archive for processed
// images. The pipeline core never touches it; the server writes a copy of
// each encoded result here when an archive directory is configured.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Archive stores encoded results on the local filesystem, one file per
// run.
type Archive struct {
	baseDir string
}

// NewArchive creates the archive directory if needed.
func NewArchive(baseDir string) (*Archive, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Put writes an encoded result and returns the archive file name.
func (a *Archive) Put(runID, format string, data []byte) (string, error) {
	ext := "jpg"
	if format == "png" {
		ext = "png"
	}
	name := fmt.Sprintf("processed_%s.%s", runID, ext)

	path, err := a.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return name, nil
}

// Open returns a reader for an archived result.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	path, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive entry not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open archive entry: %w", err)
	}
	return file, nil
}

// Exists checks whether an archived result is present.
func (a *Archive) Exists(name string) (bool, error) {
	path, err := a.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat archive entry: %w", err)
	}
	return true, nil
}

// resolve joins name under the base directory, rejecting path traversal.
func (a *Archive) resolve(name string) (string, error) {
	path := filepath.Join(a.baseDir, name)
	if !filepath.HasPrefix(filepath.Clean(path), filepath.Clean(a.baseDir)) {
		return "", fmt.Errorf("invalid archive name: path traversal detected")
	}
	return path, nil
}
