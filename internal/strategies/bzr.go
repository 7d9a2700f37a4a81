package strategies

import (
	"context"
	"os"
	"path/filepath"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

type bzrBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	cached   string
}

// NewBzrStrategy creates the Bazaar fetch strategy. The cache entry is a
// lightweight (historyless) checkout.
func NewBzrStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	cached := deps.Cache.RepoPath(res.Name, cache.TagBzr)
	return &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend: &bzrBackend{
			deps:     deps,
			resource: res,
			cached:   cached,
		},
	}
}

func (b *bzrBackend) Name() string {
	return "bzr"
}

func (b *bzrBackend) Valid() bool {
	return utils.IsDir(filepath.Join(b.cached, ".bzr"))
}

func (b *bzrBackend) Clone(ctx context.Context) error {
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "bzr",
		Args: []string{"checkout", "--lightweight", b.resource.URL, b.cached},
	})
}

func (b *bzrBackend) Update(ctx context.Context) error {
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "bzr",
		Args: []string{"update"},
		Dir:  b.cached,
	})
}

// Export copies the working tree and strips the metadata directory
// afterwards; bzr cannot export from a lightweight checkout.
func (b *bzrBackend) Export(_ context.Context, dest string) error {
	if err := utils.CopyDir(b.cached, dest); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(dest, ".bzr"))
}
