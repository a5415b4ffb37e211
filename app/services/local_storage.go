package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorageService is the development fallback behind the storage
// gateway. Files land under baseDir and are served by the static route.
type LocalStorageService interface {
	Save(category, filename string, content []byte) (string, error)
	Remove(category, filename string) error
	Path(category, filename string) string
}

type LocalStorageServiceImpl struct {
	baseDir string
}

func NewLocalStorageService(baseDir string) (*LocalStorageServiceImpl, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}
	return &LocalStorageServiceImpl{baseDir: baseDir}, nil
}

// Save writes content under baseDir/category and returns the public path
// the static route serves it from.
func (s *LocalStorageServiceImpl) Save(category, filename string, content []byte) (string, error) {
	category = sanitizePathComponent(category)
	filename = sanitizePathComponent(filename)
	if category == "" || filename == "" {
		return "", fmt.Errorf("invalid storage path")
	}

	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file locally: %w", err)
	}

	log.Printf("File saved locally: %s", target)
	return "/uploads/" + category + "/" + filename, nil
}

// Remove deletes a locally stored file. Missing files are not an error.
func (s *LocalStorageServiceImpl) Remove(category, filename string) error {
	category = sanitizePathComponent(category)
	filename = sanitizePathComponent(filename)
	if category == "" || filename == "" {
		return fmt.Errorf("invalid storage path")
	}

	err := os.Remove(filepath.Join(s.baseDir, category, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the on-disk location of a stored file.
func (s *LocalStorageServiceImpl) Path(category, filename string) string {
	return filepath.Join(s.baseDir, sanitizePathComponent(category), sanitizePathComponent(filename))
}

// sanitizePathComponent strips directory traversal out of a single path
// segment.
func sanitizePathComponent(part string) string {
	part = strings.ReplaceAll(part, "\\", "/")
	part = filepath.Base(part)
	if part == "." || part == ".." || part == "/" {
		return ""
	}
	return part
}
