package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"backoffice-service/pkg/config"

	"github.com/google/uuid"
)

var store *LogoStore

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// LogoStore writes company logos to local disk, namespaced by company id:
// <base>/company_logos/<company_id>/<uuid><ext>
type LogoStore struct {
	baseDir     string
	maxFileSize int64
}

// Init configures the global logo store
func Init(cfg *config.UploadConfig) {
	store = NewLogoStore(cfg.Dir, cfg.MaxFileSize)
}

// Get returns the global logo store
func Get() *LogoStore {
	return store
}

// NewLogoStore creates a logo store rooted at baseDir
func NewLogoStore(baseDir string, maxFileSize int64) *LogoStore {
	return &LogoStore{baseDir: baseDir, maxFileSize: maxFileSize}
}

// SaveLogo validates and stores one uploaded logo, returning the path
// relative to the store root
func (s *LogoStore) SaveLogo(companyID uint, filename string, size int64, src io.Reader) (string, error) {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return "", fmt.Errorf("file %s exceeds maximum size of %d bytes", filename, s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %s not allowed", ext)
	}

	relDir := filepath.Join("company_logos", fmt.Sprintf("%d", companyID))
	if err := os.MkdirAll(filepath.Join(s.baseDir, relDir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create logo directory: %w", err)
	}

	relPath := filepath.Join(relDir, uuid.New().String()+ext)
	dst, err := os.Create(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return "", fmt.Errorf("failed to create logo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write logo file: %w", err)
	}

	return relPath, nil
}
