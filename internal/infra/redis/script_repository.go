package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gift-experience-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ScriptLoader fetches script content from a backing store (files, Postgres).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches whole scripts in Redis and falls back to a loader on cache miss.
// Scripts are stored as JSON: SET script:{scriptID} {json} EX ttl
type ScriptRepository struct {
	client *redis.Client
	loader ScriptLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewScriptRepository(client *redis.Client, loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	if script, ok := r.cached(ctx, scriptID); ok {
		return script, nil
	}

	result, err, _ := r.sf.Do(scriptID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if script, ok := r.cached(ctx, scriptID); ok {
			return script, nil
		}

		script, err := r.loader.LoadScript(ctx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}
		if err := script.Validate(); err != nil {
			return domain.Script{}, err
		}

		data, err := json.Marshal(script)
		if err != nil {
			return domain.Script{}, fmt.Errorf("marshal script: %w", err)
		}
		// best-effort: a failed write only costs a reload next time
		_ = r.client.Set(ctx, r.key(scriptID), data, r.ttlWithJitter()).Err()
		return script, nil
	})
	if err != nil {
		return domain.Script{}, err
	}
	return result.(domain.Script), nil
}

func (r *ScriptRepository) cached(ctx context.Context, scriptID string) (domain.Script, bool) {
	data, err := r.client.Get(ctx, r.key(scriptID)).Bytes()
	if err != nil {
		return domain.Script{}, false
	}
	var script domain.Script
	if err := json.Unmarshal(data, &script); err != nil {
		return domain.Script{}, false
	}
	return script, true
}

// Invalidate drops a cached script so the next read reloads it.
func (r *ScriptRepository) Invalidate(ctx context.Context, scriptID string) error {
	err := r.client.Del(ctx, r.key(scriptID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (r *ScriptRepository) key(scriptID string) string {
	return "script:" + scriptID
}

func (r *ScriptRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
