// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the local SQLite database that backs
// persisted exploration state.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool, applies WAL journal
// mode, NORMAL synchronous and a busy timeout to every connection, and
// runs a caller-supplied schema script once per connection. Callers
// [Pool.Take] a connection, run SQL with sqlitex.Execute, and
// [Pool.Put] it back. Connections are not safe for concurrent use.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   filepath.Join(stateDirectory, "explore-profiles.db"),
//	    Schema: favoritesSchema,
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
