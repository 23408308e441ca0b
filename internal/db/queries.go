package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetValue returns the value stored under key.
// found is false when the key has never been written.
func GetValue(ctx context.Context, db *sql.DB, key string) (value []byte, found bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// PutValue writes value under key, replacing any previous value.
func PutValue(ctx context.Context, db *sql.DB, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// KV adapts a database handle to a key-value interface.
type KV struct {
	db *sql.DB
}

// NewKV wraps an initialized database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get implements store.KV.
func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return GetValue(ctx, k.db, key)
}

// Put implements store.KV.
func (k *KV) Put(ctx context.Context, key string, value []byte) error {
	return PutValue(ctx, k.db, key, value)
}
