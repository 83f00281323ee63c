package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLogo(t *testing.T) {
	dir := t.TempDir()
	s := NewLogoStore(dir, 1024)

	content := "fake png bytes"
	relPath, err := s.SaveLogo(7, "logo.png", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, filepath.Join("company_logos", "7")))
	assert.True(t, strings.HasSuffix(relPath, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, relPath))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSaveLogoUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	s := NewLogoStore(dir, 1024)

	relPath, err := s.SaveLogo(1, "LOGO.JPG", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(relPath, ".jpg"))
}

func TestSaveLogoRejectsExtension(t *testing.T) {
	s := NewLogoStore(t.TempDir(), 1024)

	_, err := s.SaveLogo(7, "logo.svg", 4, strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	_, err = s.SaveLogo(7, "noext", 4, strings.NewReader("data"))
	assert.Error(t, err)
}

func TestSaveLogoRejectsOversize(t *testing.T) {
	s := NewLogoStore(t.TempDir(), 10)

	_, err := s.SaveLogo(7, "logo.png", 11, strings.NewReader("aaaaaaaaaaa"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestSaveLogoUniquePaths(t *testing.T) {
	s := NewLogoStore(t.TempDir(), 1024)

	first, err := s.SaveLogo(7, "logo.png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	second, err := s.SaveLogo(7, "logo.png", 4, strings.NewReader("data"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
