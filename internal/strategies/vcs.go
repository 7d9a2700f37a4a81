package strategies

import (
	"context"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// vcsBackend is the per-backend half of a VCS strategy. VCSStrategy owns
// the shared fetch state machine; the backend supplies clone, incremental
// update, structural validity and export.
type vcsBackend interface {
	// Name returns the backend name (also the strategy name).
	Name() string

	// Clone creates the cache entry from scratch.
	Clone(ctx context.Context) error

	// Update refreshes an existing, valid cache entry incrementally.
	Update(ctx context.Context) error

	// Valid reports whether the existing cache entry is structurally a
	// repository of the expected kind. An interrupted clone fails this.
	Valid() bool

	// Export materializes a clean, metadata-free tree into dest.
	Export(ctx context.Context, dest string) error
}

// VCSStrategy wraps a backend with the shared version-control fetch
// lifecycle: a valid cache entry is updated incrementally, an invalid one
// is cleared and recloned, a missing one is cloned.
type VCSStrategy struct {
	deps     *Dependencies
	resource *domain.Resource
	backend  vcsBackend
	cached   string
}

// Name returns the strategy name
func (s *VCSStrategy) Name() string {
	return s.backend.Name()
}

// CachedLocation returns the repository cache entry path.
func (s *VCSStrategy) CachedLocation() string {
	return s.cached
}

// ClearCache removes the repository cache entry.
func (s *VCSStrategy) ClearCache() error {
	return s.deps.Cache.Clear(s.cached)
}

// Fetch populates or refreshes the repository cache entry.
func (s *VCSStrategy) Fetch(ctx context.Context) error {
	log := s.deps.Logger.WithStrategy(s.Name()).WithResource(s.resource.Name)

	if utils.Exists(s.cached) {
		if s.backend.Valid() {
			log.Debug().Str("path", s.cached).Msg("updating cached repository")
			return s.backend.Update(ctx)
		}

		// Leftover of an interrupted clone: clear and start over. This is
		// the one failure class that is repaired silently.
		log.Warn().Str("path", s.cached).Err(domain.ErrInvalidCache).
			Msg("clearing cache entry")
		if err := s.ClearCache(); err != nil {
			return err
		}
	}

	if err := s.deps.Cache.Ensure(); err != nil {
		return err
	}
	log.Debug().Str("url", s.resource.URL).Msg("cloning repository")
	return s.backend.Clone(ctx)
}

// Stage exports the repository working tree into dest without VCS control
// files, so the build directory is reproducible and disposable.
func (s *VCSStrategy) Stage(ctx context.Context, dest string) (string, error) {
	if err := utils.EnsureDir(dest); err != nil {
		return "", err
	}
	if err := s.backend.Export(ctx, dest); err != nil {
		return "", err
	}
	return dest, nil
}
