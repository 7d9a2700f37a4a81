package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadError(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewDownloadError("https://example.com/foo.tar.gz", inner)

	assert.Contains(t, err.Error(), "https://example.com/foo.tar.gz")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, inner)
}

func TestEmptyArchiveError(t *testing.T) {
	err := NewEmptyArchiveError("/cache/foo--1.0.tar.gz")

	assert.Contains(t, err.Error(), "/cache/foo--1.0.tar.gz")
	assert.ErrorIs(t, err, ErrEmptyArchive)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("unknown download strategy %q", "tarball")

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), `"tarball"`)
}
