package strategies

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/config"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/utils"
)

func testDeps(t *testing.T) *Dependencies {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Root = t.TempDir()
	return NewDependencies(cfg, utils.NewNopLogger())
}

func testResource(url string) *domain.Resource {
	return &domain.Resource{Name: "foo", URL: url, Version: "1.0"}
}

func TestHTTPStrategy_Fetch(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, "archive bytes")
	}))
	defer server.Close()

	deps := testDeps(t)
	s := NewHTTPStrategy(deps, testResource(server.URL+"/foo-1.0.tar.gz"))

	require.NoError(t, s.Fetch(context.Background()))

	cached := s.CachedLocation()
	data, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(data))

	// The partial-download file must be gone after the atomic rename.
	assert.NoFileExists(t, cache.IncompletePath(cached))
	assert.Equal(t, int32(1), requests.Load())
}

// TestHTTPStrategy_Fetch_AlreadyCached verifies a cached entry is never
// re-downloaded.
func TestHTTPStrategy_Fetch_AlreadyCached(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	deps := testDeps(t)
	s := NewHTTPStrategy(deps, testResource(server.URL+"/foo-1.0.tar.gz"))

	require.NoError(t, deps.Cache.Ensure())
	require.NoError(t, os.WriteFile(s.CachedLocation(), []byte("cached"), 0o644))

	require.NoError(t, s.Fetch(context.Background()))
	assert.Equal(t, int32(0), requests.Load())
}

// TestHTTPStrategy_Fetch_MirrorFallback verifies mirrors are tried in
// order after the primary fails.
func TestHTTPStrategy_Fetch_MirrorFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "from mirror")
	}))
	defer mirror.Close()

	deps := testDeps(t)
	res := testResource(primary.URL + "/foo-1.0.tar.gz")
	res.Mirrors = []string{mirror.URL + "/foo-1.0.tar.gz"}
	s := NewHTTPStrategy(deps, res)

	require.NoError(t, s.Fetch(context.Background()))

	data, err := os.ReadFile(s.CachedLocation())
	require.NoError(t, err)
	assert.Equal(t, "from mirror", string(data))
}

// TestHTTPStrategy_Fetch_ResumeRefusedRetriesOnce verifies a server that
// answers a ranged request with a full response causes the partial file to
// be discarded and the same URL retried from scratch, before any mirror is
// consulted.
func TestHTTPStrategy_Fetch_ResumeRefusedRetriesOnce(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		// Always answer 200 with the full body, ignoring Range.
		fmt.Fprint(w, "full body")
	}))
	defer server.Close()

	deps := testDeps(t)
	res := testResource(server.URL + "/foo-1.0.tar.gz")
	res.Mirrors = []string{server.URL + "/mirror-should-not-be-needed.tar.gz"}
	s := NewHTTPStrategy(deps, res)

	// Leftover partial download from an earlier interrupted run.
	require.NoError(t, deps.Cache.Ensure())
	incomplete := cache.IncompletePath(s.CachedLocation())
	require.NoError(t, os.WriteFile(incomplete, []byte("full"), 0o644))

	require.NoError(t, s.Fetch(context.Background()))

	data, err := os.ReadFile(s.CachedLocation())
	require.NoError(t, err)
	assert.Equal(t, "full body", string(data))

	// One refused resume plus one fresh download; the mirror never used.
	assert.Equal(t, int32(2), requests.Load())
}

// TestHTTPStrategy_Fetch_Exhausted verifies every mirror is attempted
// exactly once after the primary fails, and the final error is a
// DownloadError naming the original URL, not the last mirror tried.
func TestHTTPStrategy_Fetch_Exhausted(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	deps := testDeps(t)
	res := testResource(server.URL + "/foo-1.0.tar.gz")
	res.Mirrors = []string{
		server.URL + "/mirror-a/foo-1.0.tar.gz",
		server.URL + "/mirror-b/foo-1.0.tar.gz",
	}
	s := NewHTTPStrategy(deps, res)

	err := s.Fetch(context.Background())

	var dlErr *domain.DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, res.URL, dlErr.URL)

	// Primary plus each of the two mirrors, once each.
	assert.Equal(t, int32(3), requests.Load())
}

func TestHTTPStrategy_ClearCache(t *testing.T) {
	deps := testDeps(t)
	s := NewHTTPStrategy(deps, testResource("https://example.com/foo-1.0.tar.gz"))

	require.NoError(t, deps.Cache.Ensure())
	require.NoError(t, os.WriteFile(s.CachedLocation(), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(cache.IncompletePath(s.CachedLocation()), []byte("y"), 0o644))

	require.NoError(t, s.ClearCache())
	assert.NoFileExists(t, s.CachedLocation())
	assert.NoFileExists(t, cache.IncompletePath(s.CachedLocation()))
}

// TestPostStrategy verifies the URL is split at "?" into the request URL
// and the form body.
func TestPostStrategy(t *testing.T) {
	deps := testDeps(t)
	s := NewPostStrategy(deps, testResource("https://example.com/download?id=42&accept=yes"))

	req := s.request("https://example.com/download?id=42&accept=yes", "/tmp/dest")
	assert.Equal(t, "https://example.com/download", req.URL)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "id=42&accept=yes", req.Body)
}

// TestBottleStrategy verifies the configured mirror host is passed along
// as a query parameter.
func TestBottleStrategy(t *testing.T) {
	deps := testDeps(t)
	deps.Config.Bottle.Mirror = "mirror.example.org"
	s := NewBottleStrategy(deps, testResource("https://example.com/foo-1.0.bottle.tar.gz"))

	url, err := s.resolve(context.Background(), "https://example.com/foo-1.0.bottle.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/foo-1.0.bottle.tar.gz?mirror=mirror.example.org", url)
}

func TestBottleStrategy_NoMirrorConfigured(t *testing.T) {
	deps := testDeps(t)
	s := NewBottleStrategy(deps, testResource("https://example.com/foo-1.0.bottle.tar.gz"))

	url, err := s.resolve(context.Background(), "https://example.com/foo-1.0.bottle.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/foo-1.0.bottle.tar.gz", url)
}

// TestNoUnzipStrategy_Stage verifies the cached file is staged verbatim.
func TestNoUnzipStrategy_Stage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "zip bytes")
	}))
	defer server.Close()

	deps := testDeps(t)
	s := NewNoUnzipStrategy(deps, testResource(server.URL+"/plugin.zip"))
	require.NoError(t, s.Fetch(context.Background()))

	dest := filepath.Join(t.TempDir(), "build")
	dir, err := s.Stage(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)

	// Staged under the URL basename, not extracted.
	data, err := os.ReadFile(filepath.Join(dest, "plugin.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip bytes", string(data))
}
