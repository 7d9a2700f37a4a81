package strategies

import (
	"context"
	"path/filepath"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

type hgBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	ref      domain.RefSelector
	cached   string
}

// NewHgStrategy creates the Mercurial fetch strategy.
func NewHgStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	cached := deps.Cache.RepoPath(res.Name, cache.TagHg)
	return &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend: &hgBackend{
			deps:     deps,
			resource: res,
			ref:      domain.ResolveRef(res),
			cached:   cached,
		},
	}
}

func (b *hgBackend) Name() string {
	return "hg"
}

func (b *hgBackend) Valid() bool {
	return utils.IsDir(filepath.Join(b.cached, ".hg"))
}

func (b *hgBackend) hg(ctx context.Context, args ...string) error {
	return b.deps.Runner.Run(ctx, tools.Command{Tool: "hg", Args: args})
}

func (b *hgBackend) Clone(ctx context.Context) error {
	return b.hg(ctx, "clone", b.resource.URL, b.cached)
}

func (b *hgBackend) Update(ctx context.Context) error {
	return b.hg(ctx, "--cwd", b.cached, "pull", "--update")
}

// Export archives the working tree, subrepositories included, optionally
// pinned to the selected ref.
func (b *hgBackend) Export(ctx context.Context, dest string) error {
	args := []string{"--cwd", b.cached, "archive", "--subrepos", "-t", "files"}
	if b.ref.Ref != "" {
		args = append(args, "-r", b.ref.Ref)
	}
	args = append(args, dest)
	return b.hg(ctx, args...)
}
