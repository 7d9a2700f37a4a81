package domain

import (
	"net/url"
	"path"
	"strings"
)

// Resource describes a software resource to fetch: a URL plus
// version/revision metadata supplied by the caller. It is consumed
// read-only by the fetch strategies.
type Resource struct {
	Name    string
	URL     string
	Version string
	Specs   map[string]string

	// Mirrors are alternate URLs for the same artifact, tried in order
	// after the primary URL fails.
	Mirrors []string
}

// Spec keys recognized in Resource.Specs.
const (
	SpecBranch    = "branch"
	SpecRevision  = "revision"
	SpecRevisions = "revisions"
	SpecTag       = "tag"
	SpecUser      = "user"
	SpecModule    = "module"
	SpecShallow   = "shallow"
)

// Spec returns the value for key, or "" when absent.
func (r *Resource) Spec(key string) string {
	if r.Specs == nil {
		return ""
	}
	return r.Specs[key]
}

// HasSpec reports whether key is present in the descriptor's specs.
func (r *Resource) HasSpec(key string) bool {
	if r.Specs == nil {
		return false
	}
	_, ok := r.Specs[key]
	return ok
}

// RefKind identifies which kind of version-control pin a RefSelector holds.
type RefKind int

const (
	// RefDefault means no pin was given: default branch / tip.
	RefDefault RefKind = iota
	RefBranch
	RefRevision
	// RefRevisions is a trunk revision plus per-external-module revisions
	// (Subversion only).
	RefRevisions
	RefTag
)

// String returns the selector kind name.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefRevision:
		return "revision"
	case RefRevisions:
		return "revisions"
	case RefTag:
		return "tag"
	default:
		return "default"
	}
}

// RefSelector is the user-specified pin identifying which version-control
// state to retrieve. Exactly one kind is active; it is resolved once from
// the descriptor's specs and never changes afterwards.
type RefSelector struct {
	Kind RefKind
	Ref  string

	// Revisions maps external module names to revisions. The trunk
	// revision is stored under RevisionsTrunkKey.
	Revisions map[string]string
}

// RevisionsTrunkKey is the Revisions map key holding the trunk revision.
const RevisionsTrunkKey = "trunk"

// ResolveRef resolves the ref selector from a descriptor's specs.
// The first matching key among branch, revision, revisions and tag wins;
// absence of all four selects the default branch/tip.
func ResolveRef(r *Resource) RefSelector {
	switch {
	case r.HasSpec(SpecBranch):
		return RefSelector{Kind: RefBranch, Ref: r.Spec(SpecBranch)}
	case r.HasSpec(SpecRevision):
		return RefSelector{Kind: RefRevision, Ref: r.Spec(SpecRevision)}
	case r.HasSpec(SpecRevisions):
		revs := ParseRevisions(r.Spec(SpecRevisions))
		return RefSelector{Kind: RefRevisions, Ref: revs[RevisionsTrunkKey], Revisions: revs}
	case r.HasSpec(SpecTag):
		return RefSelector{Kind: RefTag, Ref: r.Spec(SpecTag)}
	default:
		return RefSelector{Kind: RefDefault}
	}
}

// Pinned reports whether the selector names an exact revision, which a
// shallow clone cannot be relied on to resolve.
func (s RefSelector) Pinned() bool {
	return s.Kind == RefRevision || s.Kind == RefRevisions
}

// ParseRevisions parses a "name=rev,name=rev" revisions spec. A bare value
// with no "=" is taken as the trunk revision.
func ParseRevisions(spec string) map[string]string {
	revs := make(map[string]string)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, rev, ok := strings.Cut(part, "="); ok {
			revs[strings.TrimSpace(name)] = strings.TrimSpace(rev)
		} else {
			revs[RevisionsTrunkKey] = part
		}
	}
	return revs
}

// Basename returns the final path element of a URL with any query string
// discarded, so "https://example.com/file.c?foo=bar" yields "file.c".
func Basename(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	}
	return path.Base(s)
}
