package strategies

import (
	"context"
	"os"
	"os/signal"

	"github.com/JdotSiv/homebrew/internal/cache"
	"github.com/JdotSiv/homebrew/internal/config"
	"github.com/JdotSiv/homebrew/internal/fetcher"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// Strategy is the capability set every fetch strategy implements.
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Fetch populates or refreshes the cache entry. It is idempotent:
	// calling it on an already-cached resource is safe and cheap.
	Fetch(ctx context.Context) error

	// Stage materializes the cache entry into dest as a clean, build-ready
	// tree and returns the effective build directory (which may be a
	// sole top-level directory inside dest). It assumes Fetch succeeded.
	Stage(ctx context.Context, dest string) (string, error)

	// CachedLocation returns the cache entry path. It is valid for path
	// computation even before Fetch has ever run.
	CachedLocation() string

	// ClearCache removes the cache entry and any strategy-specific side
	// files, such as the partial-download marker.
	ClearCache() error
}

// Dependencies contains shared dependencies for all strategies
type Dependencies struct {
	Cache  *cache.Cache
	Client *fetcher.Client
	Runner *tools.Runner
	Logger *utils.Logger
	Config *config.Config
}

// NewDependencies creates strategy dependencies from configuration.
func NewDependencies(cfg *config.Config, logger *utils.Logger) *Dependencies {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	return &Dependencies{
		Cache: cache.New(cfg.Cache.Root),
		Client: fetcher.NewClient(fetcher.ClientOptions{
			Timeout:    cfg.HTTP.Timeout,
			MaxRetries: cfg.HTTP.MaxRetries,
			UserAgent:  cfg.HTTP.UserAgent,
			Quiet:      !cfg.Verbose,
		}),
		Runner: &tools.Runner{Quiet: !cfg.Verbose},
		Logger: logger,
		Config: cfg,
	}
}

// holdInterrupts runs fn with SIGINT delivery deferred, so the final
// rename of a completed download cannot observe a half-renamed entry.
// A signal received meanwhile is redelivered afterwards.
func holdInterrupts(fn func() error) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	defer func() {
		signal.Stop(ch)
		select {
		case sig := <-ch:
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(sig)
			}
		default:
		}
	}()
	return fn()
}
