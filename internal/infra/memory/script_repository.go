package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"gift-experience-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ScriptLoader fetches script content from a backing store (files, Postgres).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches validated scripts with TTL to avoid repeated loads.
type ScriptRepository struct {
	loader ScriptLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedScript
}

type cachedScript struct {
	script    domain.Script
	expiresAt time.Time
}

func NewScriptRepository(loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScript),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	if script, ok := r.cached(scriptID); ok {
		return script, nil
	}

	result, err, _ := r.sf.Do(scriptID, func() (interface{}, error) {
		if script, ok := r.cached(scriptID); ok {
			return script, nil
		}

		script, err := r.loader.LoadScript(ctx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}
		if err := script.Validate(); err != nil {
			return domain.Script{}, err
		}

		r.mu.Lock()
		r.cache[scriptID] = cachedScript{
			script:    script,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return script, nil
	})
	if err != nil {
		return domain.Script{}, err
	}
	return result.(domain.Script), nil
}

func (r *ScriptRepository) cached(scriptID string) (domain.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[scriptID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Script{}, false
	}
	return entry.script, true
}

// StaticScriptLoader is a simple loader backed by an in-memory map (built-in content, tests).
type StaticScriptLoader struct {
	scripts map[string]domain.Script
}

func NewStaticScriptLoader(scripts ...domain.Script) *StaticScriptLoader {
	m := make(map[string]domain.Script, len(scripts))
	for _, s := range scripts {
		m[s.ID] = s
	}
	return &StaticScriptLoader{scripts: m}
}

func (l *StaticScriptLoader) LoadScript(_ context.Context, scriptID string) (domain.Script, error) {
	if script, ok := l.scripts[scriptID]; ok {
		return script, nil
	}
	return domain.Script{}, domain.ErrScriptNotFound
}

func (r *ScriptRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// FallbackLoader tries each loader in order and moves on only when a script is not found there.
type FallbackLoader struct {
	loaders []ScriptLoader
}

func NewFallbackLoader(loaders ...ScriptLoader) *FallbackLoader {
	return &FallbackLoader{loaders: loaders}
}

func (l *FallbackLoader) LoadScript(ctx context.Context, scriptID string) (domain.Script, error) {
	for _, loader := range l.loaders {
		script, err := loader.LoadScript(ctx, scriptID)
		if errors.Is(err, domain.ErrScriptNotFound) {
			continue
		}
		return script, err
	}
	return domain.Script{}, domain.ErrScriptNotFound
}
