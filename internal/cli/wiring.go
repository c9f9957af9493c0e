package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/config"
	"gift-experience-service/internal/content"
	"gift-experience-service/internal/infra/file"
	"gift-experience-service/internal/infra/memory"
	pgstore "gift-experience-service/internal/infra/postgres"
	redisstore "gift-experience-service/internal/infra/redis"
	"gift-experience-service/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime is everything the front ends share.
type runtime struct {
	service  *app.ExperienceService
	scriptID string
	closers  []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{scriptID: cfg.Script.ID}
	if rt.scriptID == "" {
		rt.scriptID = content.DefaultScriptID
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
	}

	// Most specific source first; the built-in script is always the last resort.
	var loaders []memory.ScriptLoader
	if pool != nil {
		loaders = append(loaders, pgstore.NewScriptLoader(pool))
	}
	if cfg.Script.Dir != "" {
		loaders = append(loaders, file.NewScriptLoader(cfg.Script.Dir))
	}
	loaders = append(loaders, memory.NewStaticScriptLoader(content.DefaultScript()))
	loader := memory.NewFallbackLoader(loaders...)

	scriptTTL := config.TTLDuration(cfg.Script.TTL, 10*time.Minute)
	var scripts app.ScriptRepository
	if redisClient != nil {
		scripts = redisstore.NewScriptRepository(redisClient, loader, scriptTTL)
	} else {
		scripts = memory.NewScriptRepository(loader, scriptTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	flags, err := buildFlagStore(ctx, cfg, redisClient, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	interval := config.TTLDuration(cfg.Experience.RevealInterval, app.DefaultRevealInterval)
	rt.service = app.NewExperienceService(sessions, scripts, flags, app.WithRevealInterval(interval))
	return rt, nil
}

func buildFlagStore(ctx context.Context, cfg config.Config, redisClient *redis.Client, rt *runtime) (app.FlagStore, error) {
	switch cfg.Flags.Backend {
	case "", "memory":
		return memory.NewFlagStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("flags backend redis needs redis.addr")
		}
		return redisstore.NewFlagStore(redisClient), nil
	case "sqlite":
		path := cfg.SQLite.Path
		if path == "" {
			path = "./flags.db"
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		return store, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("flags backend postgres needs postgres.url")
		}
		db := pgstore.OpenBun(cfg.Postgres.URL)
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		return pgstore.NewFlagStore(db), nil
	default:
		return nil, fmt.Errorf("unknown flags backend %q", cfg.Flags.Backend)
	}
}

func logBackends(cfg config.Config) {
	backend := cfg.Flags.Backend
	if backend == "" {
		backend = "memory"
	}
	log.Printf("redis=%t postgres=%t flags=%s", cfg.Redis.Addr != "", cfg.Postgres.URL != "", backend)
}
