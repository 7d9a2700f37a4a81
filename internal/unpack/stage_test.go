package unpack

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
)

func writeGzipFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

// writeTarball creates a gzip-compressed tarball whose entries all live
// under the given top-level directory.
func writeTarball(t *testing.T, path, topDir string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     topDir + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: topDir + "/" + name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
}

// TestStage_GzipSingleFile verifies a bare .gz file is decompressed in
// place, named after the input with the compression extension stripped.
func TestStage_GzipSingleFile(t *testing.T) {
	tmp := t.TempDir()
	cached := filepath.Join(tmp, "fix-build.patch.gz")
	writeGzipFile(t, cached, "patch contents\n")

	dest := filepath.Join(tmp, "build")
	dir, err := Stage(context.Background(), &tools.Runner{Quiet: true}, cached, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)

	data, err := os.ReadFile(filepath.Join(dest, "fix-build.patch"))
	require.NoError(t, err)
	assert.Equal(t, "patch contents\n", string(data))
}

// TestStage_UnknownCopiesVerbatim verifies files of unrecognized type are
// copied into the build directory untouched.
func TestStage_UnknownCopiesVerbatim(t *testing.T) {
	tmp := t.TempDir()
	cached := filepath.Join(tmp, "standalone.c")
	require.NoError(t, os.WriteFile(cached, []byte("int main(void){}\n"), 0o644))

	dest := filepath.Join(tmp, "build")
	dir, err := Stage(context.Background(), &tools.Runner{Quiet: true}, cached, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)

	data, err := os.ReadFile(filepath.Join(dest, "standalone.c"))
	require.NoError(t, err)
	assert.Equal(t, "int main(void){}\n", string(data))
}

// TestStage_Tarball_DescendsSoleDirectory verifies the effective build
// directory is the archive's single top-level directory.
func TestStage_Tarball_DescendsSoleDirectory(t *testing.T) {
	if tools.Locate("tar") == "" {
		t.Skip("tar not available")
	}

	tmp := t.TempDir()
	cached := filepath.Join(tmp, "foo--1.2.tar.gz")
	writeTarball(t, cached, "foo-1.2", map[string]string{
		"configure":  "#!/bin/sh\n",
		"src/main.c": "int main(void){}\n",
	})

	dest := filepath.Join(tmp, "build")
	dir, err := Stage(context.Background(), &tools.Runner{Quiet: true}, cached, dest)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "foo-1.2"), dir)
	assert.FileExists(t, filepath.Join(dir, "configure"))
	assert.FileExists(t, filepath.Join(dir, "src", "main.c"))
}

func TestDescendSoleEntry(t *testing.T) {
	t.Run("empty extraction is fatal", func(t *testing.T) {
		dest := t.TempDir()
		_, err := descendSoleEntry("/cache/foo.tar.gz", dest)
		assert.ErrorIs(t, err, domain.ErrEmptyArchive)
	})

	t.Run("sole directory is descended into", func(t *testing.T) {
		dest := t.TempDir()
		sole := filepath.Join(dest, "foo-1.2")
		require.NoError(t, os.Mkdir(sole, 0o755))

		dir, err := descendSoleEntry("/cache/foo.tar.gz", dest)
		require.NoError(t, err)
		assert.Equal(t, sole, dir)
	})

	t.Run("sole file stays at dest", func(t *testing.T) {
		dest := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dest, "only.txt"), nil, 0o644))

		dir, err := descendSoleEntry("/cache/foo.tar.gz", dest)
		require.NoError(t, err)
		assert.Equal(t, dest, dir)
	})

	t.Run("multiple entries stay at dest", func(t *testing.T) {
		dest := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dest, "a"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(dest, "b"), 0o755))

		dir, err := descendSoleEntry("/cache/foo.tar.gz", dest)
		require.NoError(t, err)
		assert.Equal(t, dest, dir)
	})
}

func TestStrippedBasename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		ext      string
		expected string
	}{
		{"gz stripped", "/cache/foo.patch.gz", ".gz", "foo.patch"},
		{"bz2 stripped", "/cache/foo.diff.bz2", ".bz2", "foo.diff"},
		{"no ext given", "/cache/standalone.c", "", "standalone.c"},
		{"query string stripped", "/cache/file.c?rev=12", "", "file.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, strippedBasename(tt.path, tt.ext))
		})
	}
}
