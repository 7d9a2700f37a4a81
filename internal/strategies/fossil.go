package strategies

import (
	"context"
	"strings"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
)

type fossilBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	ref      domain.RefSelector
	cached   string
}

// NewFossilStrategy creates the Fossil fetch strategy. The cache entry is
// the repository file itself; checkout happens lazily at stage time.
func NewFossilStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	cached := deps.Cache.RepoPath(res.Name, cache.TagFossil)
	return &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend: &fossilBackend{
			deps:     deps,
			resource: res,
			ref:      domain.ResolveRef(res),
			cached:   cached,
		},
	}
}

func (b *fossilBackend) Name() string {
	return "fossil"
}

// Valid always holds: the entry is a single repository file and pull
// copes with whatever state it is in.
func (b *fossilBackend) Valid() bool {
	return true
}

func (b *fossilBackend) url() string {
	return strings.TrimPrefix(b.resource.URL, "fossil://")
}

func (b *fossilBackend) Clone(ctx context.Context) error {
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "fossil",
		Args: []string{"clone", b.url(), b.cached},
	})
}

func (b *fossilBackend) Update(ctx context.Context) error {
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "fossil",
		Args: []string{"pull", "-R", b.cached},
	})
}

// Export opens the repository into dest, optionally at the selected ref.
func (b *fossilBackend) Export(ctx context.Context, dest string) error {
	args := []string{"open", b.cached}
	if b.ref.Ref != "" {
		args = append(args, b.ref.Ref)
	}
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "fossil",
		Args: args,
		Dir:  dest,
	})
}
