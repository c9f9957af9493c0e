package cli

import (
	"context"
	"fmt"
	"log"

	"gift-experience-service/internal/config"
	"gift-experience-service/internal/content"
	"gift-experience-service/internal/domain"
	"gift-experience-service/internal/infra/file"
	"gift-experience-service/internal/infra/postgres"
	redisstore "gift-experience-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewSeedCmd stores a script in Postgres: the built-in one, or a YAML file.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [script.yaml]",
		Short: "Store a script in Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSeed(cmd.Context(), *configPath, path)
		},
	}
}

func runSeed(ctx context.Context, configPath, scriptPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	script := content.DefaultScript()
	if scriptPath != "" {
		if script, err = file.ReadScript(scriptPath); err != nil {
			return err
		}
	}
	if script.ID == "" {
		return fmt.Errorf("%w: script id is required", domain.ErrInvalidScript)
	}
	if err := script.Validate(); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var cache scriptCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache = redisstore.NewScriptRepository(client, nil, 0)
	}

	return publishScript(ctx, postgres.NewScriptLoader(pool), cache, script)
}

type scriptSaver interface {
	SaveScript(ctx context.Context, script domain.Script) error
}

type scriptCache interface {
	Invalidate(ctx context.Context, scriptID string) error
}

// publishScript stores script and drops any cached copy so running servers
// pick it up on their next load. cache may be nil.
func publishScript(ctx context.Context, saver scriptSaver, cache scriptCache, script domain.Script) error {
	if err := saver.SaveScript(ctx, script); err != nil {
		return err
	}
	if cache != nil {
		if err := cache.Invalidate(ctx, script.ID); err != nil {
			return fmt.Errorf("invalidate cached script %s: %w", script.ID, err)
		}
	}
	log.Printf("script %s stored", script.ID)
	return nil
}
