// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/explore-profiles/lib/clock"
	"github.com/bureau-foundation/explore-profiles/lib/sqlitepool"
)

// MemoryBackend keeps blobs in memory.
type MemoryBackend struct {
	mutex sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (backend *MemoryBackend) Load(ctx context.Context, user string) ([]byte, error) {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	return slices.Clone(backend.blobs[user]), nil
}

func (backend *MemoryBackend) Save(ctx context.Context, user string, data []byte) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.blobs[user] = slices.Clone(data)
	return nil
}

// Schema creates the favorites table. Pass it as sqlitepool.Config.Schema.
const Schema = `
CREATE TABLE IF NOT EXISTS favorites (
	user       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteBackend stores one row per user in the favorites table.
type SQLiteBackend struct {
	pool  *sqlitepool.Pool
	clock clock.Clock
}

// NewSQLiteBackend returns a backend on pool, which must have been
// opened with [Schema]. A nil clock uses the wall clock.
func NewSQLiteBackend(pool *sqlitepool.Pool, timeSource clock.Clock) *SQLiteBackend {
	if timeSource == nil {
		timeSource = clock.Real()
	}
	return &SQLiteBackend{pool: pool, clock: timeSource}
}

func (backend *SQLiteBackend) Load(ctx context.Context, user string) ([]byte, error) {
	conn, err := backend.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer backend.pool.Put(conn)

	var data []byte
	err = sqlitex.Execute(conn, "SELECT data FROM favorites WHERE user = ?", &sqlitex.ExecOptions{
		Args: []any{user},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("favorites: reading row for %q: %w", user, err)
	}
	return data, nil
}

func (backend *SQLiteBackend) Save(ctx context.Context, user string, data []byte) error {
	conn, err := backend.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer backend.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO favorites (user, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, &sqlitex.ExecOptions{
		Args: []any{user, data, backend.clock.Now().UnixMilli()},
	})
	if err != nil {
		return fmt.Errorf("favorites: writing row for %q: %w", user, err)
	}
	return nil
}

// UpdatedAt returns when user's row was last written.
func (backend *SQLiteBackend) UpdatedAt(ctx context.Context, user string) (time.Time, bool, error) {
	conn, err := backend.pool.Take(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	defer backend.pool.Put(conn)

	var updated time.Time
	found := false
	err = sqlitex.Execute(conn, "SELECT updated_at FROM favorites WHERE user = ?", &sqlitex.ExecOptions{
		Args: []any{user},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			updated = time.UnixMilli(stmt.ColumnInt64(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("favorites: reading update time for %q: %w", user, err)
	}
	return updated, found, nil
}
