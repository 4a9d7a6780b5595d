// Package storage provides the ledger stores. The ledger is persisted
// and handed out as a whole snapshot: engine calls are transaction
// boundaries, so callers load the full state, compute, and replace it
// atomically.
package storage

import (
	"context"
	"fmt"

	"bilancio/internal/config"
	"bilancio/internal/core"
)

// LedgerStore is the single logical owner of the ledger aggregate.
type LedgerStore interface {
	// LoadSnapshot returns the full ledger state, including the
	// read-only category registry.
	LoadSnapshot(ctx context.Context) (core.Snapshot, error)

	// ReplaceSnapshot atomically replaces transactions, rules, budgets
	// and goals with the given snapshot. Categories are registry data
	// and are not written here.
	ReplaceSnapshot(ctx context.Context, snap core.Snapshot) error

	// DeleteRule removes a recurring rule and hard-deletes every
	// transaction materialized from it.
	DeleteRule(ctx context.Context, ruleID string) error

	Close() error
}

// Open builds the ledger store selected by the configuration.
func Open(cfg *config.Config) (LedgerStore, error) {
	switch cfg.DataBackend {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLiteDBPath)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
