package unpack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDetectType_ByName tests extension-based classification.
func TestDetectType_ByName(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Type
	}{
		{"zip", "foo.zip", TypeZip},
		{"jar", "foo.jar", TypeZip},
		{"tar.gz", "foo-1.2.tar.gz", TypeTar},
		{"tgz", "foo.tgz", TypeTar},
		{"tar.bz2", "foo.tar.bz2", TypeTar},
		{"tbz2", "foo.tbz2", TypeTar},
		{"tar.Z", "foo.tar.Z", TypeTar},
		{"plain tar", "foo.tar", TypeTar},
		{"tar.xz", "foo.tar.xz", TypeXz},
		{"txz", "foo.txz", TypeXz},
		{"bare xz", "foo.xz", TypeXz},
		{"tar.lz", "foo.tar.lz", TypeLzip},
		{"bare gz", "foo.patch.gz", TypeGzipOnly},
		{"bare bz2", "foo.diff.bz2", TypeBzip2Only},
		{"xar", "foo.xar", TypeXar},
		{"pkg", "foo.pkg", TypeXar},
		{"rar", "foo.rar", TypeRar},
		{"7z", "foo.7z", TypeSevenZip},
		{"query string stripped", "foo.tar.gz?token=abc", TypeTar},
		{"case insensitive", "FOO.ZIP", TypeZip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := detectByName(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.expected, typ)
		})
	}
}

// TestDetectType_ByMagic tests content-signature classification for files
// whose names carry no useful extension.
func TestDetectType_ByMagic(t *testing.T) {
	tests := []struct {
		name     string
		header   []byte
		expected Type
	}{
		{"zip", []byte("PK\x03\x04rest"), TypeZip},
		{"xz", []byte("\xfd7zXZ\x00rest"), TypeXz},
		{"lzip", []byte("LZIPrest"), TypeLzip},
		{"rar", []byte("Rar!rest"), TypeRar},
		{"7z", []byte("7z\xbc\xaf\x27\x1crest"), TypeSevenZip},
		{"xar", []byte("xar!rest"), TypeXar},
		{"gzip stream assumed tar", []byte("\x1f\x8brest"), TypeTar},
		{"bzip2 stream assumed tar", []byte("BZhrest"), TypeTar},
		{"no signature", []byte("#!/bin/sh\n"), TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "download")
			require.NoError(t, os.WriteFile(path, tt.header, 0o644))
			assert.Equal(t, tt.expected, DetectType(path))
		})
	}
}

func TestDetectType_UstarAtOffset(t *testing.T) {
	header := make([]byte, 300)
	copy(header[257:], "ustar")

	path := filepath.Join(t.TempDir(), "download")
	require.NoError(t, os.WriteFile(path, header, 0o644))
	assert.Equal(t, TypeTar, DetectType(path))
}

func TestDetectType_MissingFile(t *testing.T) {
	assert.Equal(t, TypeUnknown, DetectType(filepath.Join(t.TempDir(), "nope")))
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "tar", TypeTar.String())
	assert.Equal(t, "gzip", TypeGzipOnly.String())
	assert.Equal(t, "unknown", TypeUnknown.String())
}
