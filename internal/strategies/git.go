package strategies

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// shallowHosts matches URLs whose servers are known to serve usable
// shallow clones. Shallow history cannot resolve arbitrary revisions, so
// pinned selectors never clone shallow regardless of host.
var shallowHosts = regexp.MustCompile(`^(git://|https?://github\.com/|http://git\.sv\.gnu\.org/|http://llvm\.org/)`)

type gitBackend struct {
	deps     *Dependencies
	resource *domain.Resource
	ref      domain.RefSelector
	cached   string
}

// NewGitStrategy creates the git fetch strategy.
func NewGitStrategy(deps *Dependencies, res *domain.Resource) *VCSStrategy {
	cached := deps.Cache.RepoPath(res.Name, cache.TagGit)
	return &VCSStrategy{
		deps:     deps,
		resource: res,
		cached:   cached,
		backend: &gitBackend{
			deps:     deps,
			resource: res,
			ref:      domain.ResolveRef(res),
			cached:   cached,
		},
	}
}

func (b *gitBackend) Name() string {
	return "git"
}

// Valid requires a .git directory and a repository go-git can open and
// resolve HEAD in. A clone that was interrupted mid-way fails both.
func (b *gitBackend) Valid() bool {
	if !utils.IsDir(filepath.Join(b.cached, ".git")) {
		return false
	}
	repo, err := gogit.PlainOpen(b.cached)
	if err != nil {
		return false
	}
	_, err = repo.Head()
	return err == nil
}

// shallow reports whether this clone may be truncated to depth 1.
func (b *gitBackend) shallow() bool {
	if b.ref.Pinned() {
		return false
	}
	if b.resource.Spec(domain.SpecShallow) == "false" {
		return false
	}
	return shallowHosts.MatchString(b.resource.URL)
}

func (b *gitBackend) git(ctx context.Context, args ...string) error {
	return b.deps.Runner.Run(ctx, tools.Command{Tool: "git", Args: args, Dir: b.cached})
}

func (b *gitBackend) gitOutput(ctx context.Context, args ...string) (string, error) {
	return b.deps.Runner.Output(ctx, tools.Command{Tool: "git", Args: args, Dir: b.cached})
}

func (b *gitBackend) Clone(ctx context.Context) error {
	args := []string{"clone"}
	if b.shallow() {
		args = append(args, "--depth", "1")
	}
	switch b.ref.Kind {
	case domain.RefBranch, domain.RefTag:
		args = append(args, "--branch", b.ref.Ref)
	}
	args = append(args, b.resource.URL, b.cached)

	// The clone target does not exist yet, so run from the cache root.
	if err := b.deps.Runner.Run(ctx, tools.Command{
		Tool: "git",
		Args: args,
		Dir:  b.deps.Cache.Root(),
	}); err != nil {
		return err
	}

	if b.ref.Kind == domain.RefRevision {
		if err := b.git(ctx, "checkout", "-f", b.ref.Ref, "--"); err != nil {
			return err
		}
	}

	return b.updateSubmodules(ctx)
}

func (b *gitBackend) Update(ctx context.Context) error {
	// The remote may have moved since the entry was created.
	if err := b.git(ctx, "remote", "set-url", "origin", b.resource.URL); err != nil {
		return err
	}
	if err := b.git(ctx, "config", "remote.origin.fetch",
		"+refs/heads/*:refs/remotes/origin/*"); err != nil {
		return err
	}

	if b.fetchNeeded(ctx) {
		if err := b.git(ctx, "fetch", "origin"); err != nil {
			return err
		}
	}

	checkoutRef, resetTarget := b.targets()
	if err := b.git(ctx, "checkout", "-f", checkoutRef, "--"); err != nil {
		return err
	}
	if err := b.git(ctx, "reset", "--hard", resetTarget); err != nil {
		return err
	}

	return b.updateSubmodules(ctx)
}

// fetchNeeded reports whether the remote must be consulted. Branches and
// the default head track the remote tip, so they always fetch; pinned
// tags and revisions fetch only when not yet resolvable locally.
func (b *gitBackend) fetchNeeded(ctx context.Context) bool {
	if b.ref.Kind == domain.RefBranch || b.ref.Kind == domain.RefDefault {
		return true
	}
	return !b.refKnown(ctx)
}

// refKnown reports whether the selected ref already resolves locally.
func (b *gitBackend) refKnown(ctx context.Context) bool {
	ref := b.ref.Ref
	if ref == "" {
		ref = "HEAD"
	}
	_, err := b.gitOutput(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// targets returns the checkout ref and the hard-reset target for the
// selector.
func (b *gitBackend) targets() (checkout, reset string) {
	switch b.ref.Kind {
	case domain.RefBranch:
		return b.ref.Ref, "origin/" + b.ref.Ref
	case domain.RefTag, domain.RefRevision:
		return b.ref.Ref, b.ref.Ref
	default:
		return "HEAD", "origin/HEAD"
	}
}

// updateSubmodules recursively syncs and updates submodules when a
// submodules file is present.
func (b *gitBackend) updateSubmodules(ctx context.Context) error {
	if !utils.Exists(filepath.Join(b.cached, ".gitmodules")) {
		return nil
	}
	if err := b.git(ctx, "submodule", "sync", "--recursive"); err != nil {
		return err
	}
	return b.git(ctx, "submodule", "update", "--init", "--recursive")
}

// Export materializes the checked-out tree via index-checkout into a
// prefix path, recursing into submodules so each lands under its correct
// relative path.
func (b *gitBackend) Export(ctx context.Context, dest string) error {
	prefix := dest
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	if err := b.git(ctx, "checkout-index", "-a", "-f", "--prefix="+prefix); err != nil {
		return err
	}

	if utils.Exists(filepath.Join(b.cached, ".gitmodules")) {
		return b.git(ctx, "submodule", "--quiet", "foreach", "--recursive",
			"git checkout-index -a -f --prefix="+prefix+"$displaypath/")
	}
	return nil
}
