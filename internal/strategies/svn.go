package strategies

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

type svnBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	ref      domain.RefSelector
	cached   string
	strategy *VCSStrategy
}

// NewSvnStrategy creates the Subversion fetch strategy. Head checkouts
// and pinned checkouts of the same resource get distinct cache entries.
func NewSvnStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	tag := cache.TagSvn
	if res.Version == "" || strings.EqualFold(res.Version, "head") {
		tag = cache.TagSvnHead
	}
	cached := deps.Cache.RepoPath(res.Name, tag)

	backend := &svnBackend{
		deps:     deps,
		resource: res,
		ref:      domain.ResolveRef(res),
		cached:   cached,
	}
	s := &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend:  backend,
	}
	backend.strategy = s
	return s
}

func (b *svnBackend) Name() string {
	return "svn"
}

func (b *svnBackend) Valid() bool {
	return utils.IsDir(filepath.Join(b.cached, ".svn"))
}

func (b *svnBackend) svn(ctx context.Context, args ...string) error {
	return b.deps.Runner.Run(ctx, tools.Command{Tool: "svn", Args: args})
}

func (b *svnBackend) Clone(ctx context.Context) error {
	if b.ref.Kind == domain.RefRevisions {
		return b.checkoutWithExternals(ctx)
	}
	return b.checkout(ctx, b.resource.URL, b.cached, b.revision(), false)
}

// checkout runs a single svn checkout, optionally pinned to a revision
// and optionally ignoring externals (which are then fetched separately).
func (b *svnBackend) checkout(ctx context.Context, url, target, revision string, ignoreExternals bool) error {
	args := []string{"checkout", url, target}
	if revision != "" {
		args = append(args, "-r", revision)
	}
	if ignoreExternals {
		args = append(args, "--ignore-externals")
	}
	return b.svn(ctx, args...)
}

// checkoutWithExternals handles the revisions selector: the trunk is
// checked out at its pinned revision with externals suppressed, then each
// external module is fetched as its own nested checkout at the revision
// the map names for it.
func (b *svnBackend) checkoutWithExternals(ctx context.Context) error {
	trunkRev := b.ref.Revisions[domain.RevisionsTrunkKey]
	if err := b.checkout(ctx, b.resource.URL, b.cached, trunkRev, true); err != nil {
		return err
	}

	externals, err := b.listExternals(ctx)
	if err != nil {
		return err
	}
	for name, url := range externals {
		rev := b.ref.Revisions[name]
		if err := b.checkout(ctx, url, filepath.Join(b.cached, name), rev, true); err != nil {
			return err
		}
	}
	return nil
}

// listExternals parses "name url" lines from the svn:externals property.
func (b *svnBackend) listExternals(ctx context.Context) (map[string]string, error) {
	out, err := b.deps.Runner.Output(ctx, tools.Command{
		Tool: "svn",
		Args: []string{"propget", "svn:externals", b.cached},
	})
	if err != nil {
		return nil, err
	}

	externals := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			externals[fields[0]] = fields[1]
		}
	}
	return externals, nil
}

// remoteURL returns the URL the working copy currently tracks.
func (b *svnBackend) remoteURL(ctx context.Context) (string, error) {
	out, err := b.deps.Runner.Output(ctx, tools.Command{
		Tool: "svn",
		Args: []string{"info", "--show-item", "url", b.cached},
	})
	return strings.TrimSpace(out), err
}

func (b *svnBackend) Update(ctx context.Context) error {
	current, err := b.remoteURL(ctx)
	if err != nil {
		return err
	}

	// A changed remote invalidates the whole working copy: clear it and
	// check out fresh rather than switching in place.
	if current != strings.TrimSuffix(b.resource.URL, "/") && current != b.resource.URL {
		if err := b.strategy.ClearCache(); err != nil {
			return err
		}
		return b.Clone(ctx)
	}

	if b.ref.Kind == domain.RefRevisions {
		return b.checkoutWithExternals(ctx)
	}

	args := []string{"up", b.cached}
	if rev := b.revision(); rev != "" {
		args = append(args, "-r", rev)
	}
	return b.svn(ctx, args...)
}

func (b *svnBackend) revision() string {
	if b.ref.Kind == domain.RefRevision {
		return b.ref.Ref
	}
	return ""
}

// Export performs a clean forced export of the working copy into dest.
func (b *svnBackend) Export(ctx context.Context, dest string) error {
	return b.svn(ctx, "export", "--force", b.cached, dest)
}
