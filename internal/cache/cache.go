package cache

import (
	"os"
	"path/filepath"
)

// Cache resolves deterministic on-disk locations for fetched resources
// under a single root directory. It does not track entries itself: an
// entry exists exactly when its path does.
type Cache struct {
	root string
}

// New creates a cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// FilePath returns the location of a single-file (HTTP) cache entry for
// the given resource name, version and source URL. The same inputs always
// yield the same path.
func (c *Cache) FilePath(name, version, url string) string {
	return filepath.Join(c.root, FileEntryName(name, version, url))
}

// RepoPath returns the location of a repository (VCS) cache entry. The
// backend tag keeps different backends, and head-vs-pinned variants of the
// same logical resource, from colliding.
func (c *Cache) RepoPath(name, backendTag string) string {
	return filepath.Join(c.root, RepoEntryName(name, backendTag))
}

// IncompletePath returns the partial-download sibling of an entry path.
func IncompletePath(entry string) string {
	return entry + ".incomplete"
}

// Ensure creates the cache root if it does not exist yet.
func (c *Cache) Ensure() error {
	return os.MkdirAll(c.root, 0o755)
}

// Clear recursively removes an entry path and its partial-download
// sibling, if either exists.
func (c *Cache) Clear(entry string) error {
	if err := os.RemoveAll(entry); err != nil {
		return err
	}
	return os.RemoveAll(IncompletePath(entry))
}
