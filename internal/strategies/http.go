package strategies

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/fetcher"
	"github.com/JdotSiv/homebrew/internal/unpack"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// HTTPStrategy downloads a single versioned file over HTTP(S) into the
// cache. Variants differ only in request construction, supplied through
// the resolveURL and buildRequest hooks.
type HTTPStrategy struct {
	deps     *Dependencies
	resource *domain.Resource
	client   *fetcher.Client
	name     string

	// resolveURL rewrites a candidate URL before the request is made
	// (mirror discovery, signed URLs). nil means identity.
	resolveURL func(ctx context.Context, url string) (string, error)

	// buildRequest constructs the download request for a resolved URL.
	// nil means a plain GET.
	buildRequest func(url, dest string) fetcher.Request

	// verbatim skips archive extraction at stage time.
	verbatim bool
}

// NewHTTPStrategy creates the default download strategy: a plain GET with
// resumable range requests and mirror fallback.
func NewHTTPStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	return &HTTPStrategy{
		deps:     deps,
		resource: res,
		client:   deps.Client,
		name:     "curl",
	}
}

// Name returns the strategy name
func (s *HTTPStrategy) Name() string {
	return s.name
}

// CachedLocation returns the cache entry path for this resource.
func (s *HTTPStrategy) CachedLocation() string {
	return s.deps.Cache.FilePath(s.resource.Name, s.resource.Version, s.resource.URL)
}

// ClearCache removes the cached file and its partial-download sibling.
func (s *HTTPStrategy) ClearCache() error {
	return s.deps.Cache.Clear(s.CachedLocation())
}

// Fetch populates the cache entry. An already-downloaded entry is never
// re-fetched. A partial download from an earlier run is resumed; when the
// server refuses resumption the partial file is discarded and a fresh
// download is attempted exactly once, before any mirror fallback. Each
// remaining mirror is then tried in order; exhaustion fails with a
// DownloadError naming the original URL.
func (s *HTTPStrategy) Fetch(ctx context.Context) error {
	cached := s.CachedLocation()
	log := s.deps.Logger.WithStrategy(s.name).WithResource(s.resource.Name)

	if utils.Exists(cached) {
		log.Debug().Str("path", cached).Msg("already cached")
		return nil
	}

	if err := s.deps.Cache.Ensure(); err != nil {
		return err
	}

	incomplete := cache.IncompletePath(cached)

	// Attempt-local mirror list: the primary first, fallbacks shifted off
	// left-to-right. Never persisted across Fetch calls.
	candidates := append([]string{s.resource.URL}, s.resource.Mirrors...)

	resumeRetried := false
	var lastErr error
	for i := 0; i < len(candidates); i++ {
		url, err := s.resolve(ctx, candidates[i])
		if err != nil {
			lastErr = err
			continue
		}

		err = s.client.Download(ctx, s.request(url, incomplete))
		if err == nil {
			return holdInterrupts(func() error {
				return os.Rename(incomplete, cached)
			})
		}

		if errors.Is(err, domain.ErrResumeNotSupported) && !resumeRetried {
			resumeRetried = true
			log.Debug().Str("url", url).Msg("server refused resume, restarting download")
			if err := os.Remove(incomplete); err != nil && !os.IsNotExist(err) {
				return err
			}
			i--
			continue
		}

		lastErr = err
		if i < len(candidates)-1 {
			log.Warn().Err(err).Str("url", url).Msg("download failed, trying mirror")
		}
	}

	var dlErr *domain.DownloadError
	if errors.As(lastErr, &dlErr) {
		return lastErr
	}
	return domain.NewDownloadError(s.resource.URL, lastErr)
}

// Stage extracts the cached file into dest.
func (s *HTTPStrategy) Stage(ctx context.Context, dest string) (string, error) {
	cached := s.CachedLocation()
	if s.verbatim {
		if err := utils.EnsureDir(dest); err != nil {
			return "", err
		}
		return dest, utils.CopyFile(cached, filepath.Join(dest, domain.Basename(s.resource.URL)))
	}
	return unpack.Stage(ctx, s.deps.Runner, cached, dest)
}

func (s *HTTPStrategy) resolve(ctx context.Context, url string) (string, error) {
	if s.resolveURL == nil {
		return url, nil
	}
	return s.resolveURL(ctx, url)
}

func (s *HTTPStrategy) request(url, dest string) fetcher.Request {
	if s.buildRequest != nil {
		return s.buildRequest(url, dest)
	}
	return fetcher.Request{URL: url, Destination: dest}
}

// NewPostStrategy creates a strategy that downloads via POST. The URL is
// split at "?" into the request URL and the form body.
func NewPostStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "post"
	s.buildRequest = func(url, dest string) fetcher.Request {
		base, body, _ := strings.Cut(url, "?")
		return fetcher.Request{
			URL:         base,
			Destination: dest,
			Method:      http.MethodPost,
			Body:        body,
		}
	}
	return s
}

// NewLegacyTLSStrategy creates a strategy forcing an outdated TLS protocol
// version for servers that cannot negotiate a modern one.
func NewLegacyTLSStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "ssl3"
	s.client = fetcher.NewClient(fetcher.ClientOptions{
		Timeout:    deps.Config.HTTP.Timeout,
		MaxRetries: deps.Config.HTTP.MaxRetries,
		UserAgent:  deps.Config.HTTP.UserAgent,
		Quiet:      !deps.Config.Verbose,
		LegacyTLS:  true,
	})
	return s
}

// NewInsecureStrategy creates a strategy that skips certificate
// validation.
//
// Deprecated: exists only for sources with irreparably broken certificate
// chains.
func NewInsecureStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "insecure"
	s.client = fetcher.NewClient(fetcher.ClientOptions{
		Timeout:     deps.Config.HTTP.Timeout,
		MaxRetries:  deps.Config.HTTP.MaxRetries,
		UserAgent:   deps.Config.HTTP.UserAgent,
		Quiet:       !deps.Config.Verbose,
		InsecureTLS: true,
	})
	return s
}

// NewNoUnzipStrategy creates a strategy that stages the cached file
// verbatim instead of extracting it.
func NewNoUnzipStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "nounzip"
	s.verbatim = true
	return s
}

// NewBottleStrategy creates a strategy for pre-built artifacts. A
// configured mirror host is passed along as a query parameter so the
// server can redirect to the closest copy.
func NewBottleStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "bottle"
	s.resolveURL = func(_ context.Context, url string) (string, error) {
		mirror := deps.Config.Bottle.Mirror
		if mirror == "" {
			return url, nil
		}
		sep := "?"
		if strings.ContainsRune(url, '?') {
			sep = "&"
		}
		return url + sep + "mirror=" + mirror, nil
	}
	return s
}
