package cache

import (
	"net/url"
	"strings"

	"github.com/JdotSiv/homebrew/internal/domain"
)

// Backend tags used in repository entry names.
const (
	TagGit     = "git"
	TagSvn     = "svn"
	TagSvnHead = "svn-HEAD"
	TagHg      = "hg"
	TagBzr     = "bzr"
	TagCvs     = "cvs"
	TagFossil  = "fossil"
)

// FileEntryName derives the file name for a single-file cache entry:
// "<name>--<version><ext>", with the extension taken from the source URL
// (query string discarded). An unpinned version falls back to "HEAD".
func FileEntryName(name, version, rawURL string) string {
	if version == "" {
		version = "HEAD"
	}
	ext := ""
	if !hostOnly(rawURL) {
		ext = extname(domain.Basename(rawURL))
	}
	return sanitize(name) + "--" + sanitize(version) + ext
}

// hostOnly reports whether rawURL has a host but no path, in which case
// its basename is the host name and any dotted suffix is a domain label,
// not a file extension.
func hostOnly(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Host != "" && strings.TrimPrefix(u.Path, "/") == ""
}

// RepoEntryName derives the directory name for a repository cache entry:
// "<name>--<backendTag>".
func RepoEntryName(name, backendTag string) string {
	return sanitize(name) + "--" + backendTag
}

// extname returns the archive extension of a file name, keeping compound
// tar extensions ("foo.tar.gz" yields ".tar.gz").
func extname(base string) string {
	lower := strings.ToLower(base)
	for _, compound := range []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.lz", ".tar.z"} {
		if strings.HasSuffix(lower, compound) {
			return base[len(base)-len(compound):]
		}
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[i:]
	}
	return ""
}

// sanitize strips path separators so resource metadata cannot escape the
// cache root.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	return strings.ReplaceAll(s, string('\\'), "-")
}
