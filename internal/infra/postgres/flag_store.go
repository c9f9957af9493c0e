package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type flagRow struct {
	bun.BaseModel `bun:"table:flags"`

	FlagKey string    `bun:"flag_key,pk"`
	SetAt   time.Time `bun:"set_at,notnull"`
}

// FlagStore keeps flags in the flags table.
type FlagStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewFlagStore(db *bun.DB) *FlagStore {
	return &FlagStore{db: db, now: time.Now}
}

func (s *FlagStore) Get(ctx context.Context, key string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*flagRow)(nil)).
		Where("flag_key = ?", key).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("postgres get flag: %w", err)
	}
	return exists, nil
}

func (s *FlagStore) Set(ctx context.Context, key string) error {
	row := &flagRow{FlagKey: key, SetAt: s.now().UTC()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (flag_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("postgres set flag: %w", err)
	}
	return nil
}
