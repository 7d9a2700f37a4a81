package app

import (
	"context"
	"sync"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/strategies"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// Orchestrator drives the detect, fetch and stage flow for resources.
// Fetches of the same cache entry are serialized with a per-path lock;
// independent resources may be fetched in parallel since their cache
// paths never collide.
type Orchestrator struct {
	deps   *strategies.Dependencies
	logger *utils.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrchestrator creates an orchestrator over the given dependencies.
func NewOrchestrator(deps *strategies.Dependencies) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		logger: deps.Logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Strategy resolves the strategy for a resource, honoring an explicit
// strategy token when given.
func (o *Orchestrator) Strategy(res *domain.Resource, explicit string) (strategies.Strategy, error) {
	typ, err := DetectStrategy(res.URL, explicit)
	if err != nil {
		return nil, err
	}
	return CreateStrategy(typ, o.deps, res)
}

// Fetch resolves and fetches a resource into the cache, returning the
// strategy so the caller can stage or inspect the entry.
func (o *Orchestrator) Fetch(ctx context.Context, res *domain.Resource, explicit string) (strategies.Strategy, error) {
	strategy, err := o.Strategy(res, explicit)
	if err != nil {
		return nil, err
	}

	lock := o.entryLock(strategy.CachedLocation())
	lock.Lock()
	defer lock.Unlock()

	o.logger.Info().
		Str("resource", res.Name).
		Str("strategy", strategy.Name()).
		Str("url", res.URL).
		Msg("fetching")

	if err := strategy.Fetch(ctx); err != nil {
		return nil, err
	}
	return strategy, nil
}

// FetchAndStage fetches a resource and stages it into dest, returning the
// effective build directory.
func (o *Orchestrator) FetchAndStage(ctx context.Context, res *domain.Resource, explicit, dest string) (string, error) {
	strategy, err := o.Fetch(ctx, res, explicit)
	if err != nil {
		return "", err
	}

	dir, err := strategy.Stage(ctx, dest)
	if err != nil {
		return "", err
	}

	o.logger.Info().
		Str("resource", res.Name).
		Str("dir", dir).
		Msg("staged")
	return dir, nil
}

// Clear removes a resource's cache entry.
func (o *Orchestrator) Clear(res *domain.Resource, explicit string) error {
	strategy, err := o.Strategy(res, explicit)
	if err != nil {
		return err
	}

	lock := o.entryLock(strategy.CachedLocation())
	lock.Lock()
	defer lock.Unlock()

	o.logger.Info().
		Str("resource", res.Name).
		Str("path", strategy.CachedLocation()).
		Msg("clearing cache entry")
	return strategy.ClearCache()
}

func (o *Orchestrator) entryLock(path string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	if lock, ok := o.locks[path]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	o.locks[path] = lock
	return lock
}
