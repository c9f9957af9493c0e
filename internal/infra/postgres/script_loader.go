package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gift-experience-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScriptLoader loads script JSONB from Postgres.
type ScriptLoader struct {
	pool *pgxpool.Pool
}

func NewScriptLoader(pool *pgxpool.Pool) *ScriptLoader {
	return &ScriptLoader{pool: pool}
}

func (l *ScriptLoader) LoadScript(ctx context.Context, scriptID string) (domain.Script, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM scripts WHERE id=$1`, scriptID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Script{}, domain.ErrScriptNotFound
	}
	if err != nil {
		return domain.Script{}, fmt.Errorf("load script: %w", err)
	}
	var script domain.Script
	if err := json.Unmarshal(raw, &script); err != nil {
		return domain.Script{}, fmt.Errorf("unmarshal script: %w", err)
	}
	if script.ID == "" {
		script.ID = scriptID
	}
	return script, nil
}

// SaveScript upserts a script so the loader can serve it.
func (l *ScriptLoader) SaveScript(ctx context.Context, script domain.Script) error {
	data, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("marshal script: %w", err)
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO scripts (id, data, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`, script.ID, string(data))
	if err != nil {
		return fmt.Errorf("save script: %w", err)
	}
	return nil
}
