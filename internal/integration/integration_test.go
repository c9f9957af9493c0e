package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/content"
	"gift-experience-service/internal/domain"
	pgstore "gift-experience-service/internal/infra/postgres"
	pgmigrations "gift-experience-service/internal/infra/postgres/migrations"
	infraredis "gift-experience-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

func TestExperienceEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := pgstore.OpenBun(pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewScriptLoader(pool)
	script := sampleScript()
	if err := loader.SaveScript(ctx, script); err != nil {
		t.Fatalf("seed script: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	scripts := infraredis.NewScriptRepository(redisClient, loader, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	flags := pgstore.NewFlagStore(db)
	service := app.NewExperienceService(sessions, scripts, flags, app.WithRevealInterval(0))

	id, seq, err := service.Start(ctx, script.ID, "visitor-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !seq.Snapshot().ShowOverlay {
		t.Fatalf("expected overlay for a new visitor")
	}
	if err := seq.DismissOverlay(ctx); err != nil {
		t.Fatalf("dismiss overlay: %v", err)
	}

	for range script.Lines {
		seq.Advance()
	}
	seq.OpenGift()
	seq.StartQuiz()
	for q, o := range []int{2, 0, 2, 3} {
		seq.SelectOption(q, o)
	}
	snap := seq.Snapshot()
	if snap.Stage != domain.StageResult || snap.Result == nil || snap.Result.Category != domain.CategoryHandbuilt {
		t.Fatalf("expected handbuilt result, got %+v", snap)
	}
	service.End(id)

	_, again, err := service.Start(ctx, script.ID, "visitor-1")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if again.Snapshot().ShowOverlay {
		t.Fatalf("expected overlay flag to persist in postgres")
	}

	cached, err := redisClient.Exists(ctx, "script:"+script.ID).Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if cached != 1 {
		t.Fatalf("expected script cached in redis")
	}
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "gift", "POSTGRES_PASSWORD": "giftpass", "POSTGRES_DB": "giftdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://gift:giftpass@%s:%s/giftdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleScript() domain.Script {
	script := content.DefaultScript()
	script.ID = "birthday-pg"
	return script
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
