package strategies

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

type cvsBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	cached   string
	root     string
	module   string
}

// NewCvsStrategy creates the CVS fetch strategy. The URL carries the CVS
// root ("cvs://:pserver:..."); the module name comes from the module
// spec, a ":mod=" URL suffix, or the URL's final path element.
func NewCvsStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	cached := deps.Cache.RepoPath(res.Name, cache.TagCvs)
	root, module := parseCvsURL(res)
	return &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend: &cvsBackend{
			deps:     deps,
			resource: res,
			cached:   cached,
			root:     root,
			module:   module,
		},
	}
}

// parseCvsURL splits a cvs:// URL into the CVS root and module name.
func parseCvsURL(res *domain.Resource) (root, module string) {
	root = strings.TrimPrefix(res.URL, "cvs://")

	if mod := res.Spec(domain.SpecModule); mod != "" {
		return root, mod
	}
	if base, mod, ok := strings.Cut(root, ":mod="); ok {
		return base, mod
	}
	if i := strings.LastIndexByte(root, '/'); i >= 0 {
		return root, root[i+1:]
	}
	return root, res.Name
}

func (b *cvsBackend) Name() string {
	return "cvs"
}

func (b *cvsBackend) Valid() bool {
	return utils.IsDir(filepath.Join(b.cached, "CVS"))
}

func (b *cvsBackend) Clone(ctx context.Context) error {
	if err := b.deps.Runner.Run(ctx, tools.Command{
		Tool: "cvs",
		Args: []string{"-d", b.root, "login"},
	}); err != nil {
		return err
	}

	// Checkout lands in a directory named after the entry, created inside
	// the cache root.
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "cvs",
		Args: []string{"-d", b.root, "checkout", "-d", filepath.Base(b.cached), b.module},
		Dir:  b.deps.Cache.Root(),
	})
}

func (b *cvsBackend) Update(ctx context.Context) error {
	return b.deps.Runner.Run(ctx, tools.Command{
		Tool: "cvs",
		Args: []string{"up"},
		Dir:  b.cached,
	})
}

// Export recursively copies the working tree, skipping the CVS metadata
// directories; cvs has no native export from a checkout.
func (b *cvsBackend) Export(_ context.Context, dest string) error {
	return filepath.WalkDir(b.cached, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.cached, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "CVS" {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dest, rel), 0o755)
		}
		return utils.CopyFile(path, filepath.Join(dest, rel))
	})
}
