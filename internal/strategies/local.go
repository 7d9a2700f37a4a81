package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/unpack"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// LocalFileStrategy serves a resource from a pre-existing local path. No
// network is involved: the supplied path is the cache location.
type LocalFileStrategy struct {
	deps *Dependencies
	path string
}

// NewLocalFileStrategy creates a strategy for a local file. The URL may
// carry a file:// scheme or be a bare path.
func NewLocalFileStrategy(deps *Dependencies, res *domain.Resource) *LocalFileStrategy {
	return &LocalFileStrategy{
		deps: deps,
		path: strings.TrimPrefix(res.URL, "file://"),
	}
}

// Name returns the strategy name
func (s *LocalFileStrategy) Name() string {
	return "local"
}

// CachedLocation returns the local path supplied by the descriptor.
func (s *LocalFileStrategy) CachedLocation() string {
	return s.path
}

// Fetch verifies the local file exists.
func (s *LocalFileStrategy) Fetch(_ context.Context) error {
	if !utils.Exists(s.path) {
		return fmt.Errorf("local file %s does not exist", s.path)
	}
	return nil
}

// Stage extracts the local file into dest.
func (s *LocalFileStrategy) Stage(ctx context.Context, dest string) (string, error) {
	return unpack.Stage(ctx, s.deps.Runner, s.path, dest)
}

// ClearCache is a no-op: the file belongs to the caller, not the cache.
func (s *LocalFileStrategy) ClearCache() error {
	return nil
}
