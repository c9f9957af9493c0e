package app

import (
	"context"
	"fmt"
)

// OverlayFlagKey is the key under which the "onboarding overlay seen" flag lives.
const OverlayFlagKey = "seenOverlay"

// FlagStore persists boolean flags (in-memory, Redis, SQLite, Postgres).
type FlagStore interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
}

// OverlayFlag is the overlay flag scoped to one visitor.
type OverlayFlag struct {
	store FlagStore
	key   string
}

func NewOverlayFlag(store FlagStore, visitorID string) OverlayFlag {
	return OverlayFlag{store: store, key: OverlayFlagKey + ":" + visitorID}
}

// Dismissed reads the flag. A flag without a store is never set.
func (f OverlayFlag) Dismissed(ctx context.Context) (bool, error) {
	if f.store == nil {
		return false, nil
	}
	seen, err := f.store.Get(ctx, f.key)
	if err != nil {
		return false, fmt.Errorf("read overlay flag: %w", err)
	}
	return seen, nil
}

// Dismiss records that the visitor has seen the overlay.
func (f OverlayFlag) Dismiss(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	if err := f.store.Set(ctx, f.key); err != nil {
		return fmt.Errorf("write overlay flag: %w", err)
	}
	return nil
}
