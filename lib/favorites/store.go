// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Backend persists one blob per user.
type Backend interface {
	// Load returns the user's blob, or nil when none is stored.
	Load(ctx context.Context, user string) ([]byte, error)
	Save(ctx context.Context, user string, data []byte) error
}

// Store is one user's favorites. Safe for concurrent use.
type Store struct {
	backend Backend
	user    string
	logger  *slog.Logger

	mutex     sync.Mutex
	favorites []Favorite
	// persisted is the last blob read or written, used to skip writes
	// that would not change the stored bytes.
	persisted []byte
}

// Open loads user's favorites from backend. A blob that cannot be
// decoded is logged and left untouched; the store starts empty and the
// blob is only replaced when the user changes their favorites.
func Open(ctx context.Context, backend Backend, user string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("user", user)

	data, err := backend.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("favorites: loading for %q: %w", user, err)
	}

	favorites, err := Decode(data, logger)
	if err != nil {
		logger.Warn("stored favorites unreadable, starting empty", "error", err)
		favorites = nil
	}

	return &Store{
		backend:   backend,
		user:      user,
		logger:    logger,
		favorites: favorites,
		persisted: data,
	}, nil
}

// List returns the favorites in insertion order.
func (store *Store) List() []Favorite {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return slices.Clone(store.favorites)
}

// Exists reports whether an equal favorite is stored.
func (store *Store) Exists(favorite Favorite) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return indexOf(store.favorites, favorite) >= 0
}

// Add stores favorite unless an equal one exists. It reports whether
// the favorite was added.
func (store *Store) Add(ctx context.Context, favorite Favorite) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if indexOf(store.favorites, favorite) >= 0 {
		return false, nil
	}
	updated := append(slices.Clone(store.favorites), favorite)
	return true, store.commit(ctx, updated)
}

// Remove deletes the favorite equal to favorite. It reports whether one
// was removed.
func (store *Store) Remove(ctx context.Context, favorite Favorite) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	index := indexOf(store.favorites, favorite)
	if index < 0 {
		return false, nil
	}
	updated := slices.Delete(slices.Clone(store.favorites), index, index+1)
	return true, store.commit(ctx, updated)
}

// Toggle adds favorite when absent and removes it when present. It
// reports whether the favorite is stored afterwards.
func (store *Store) Toggle(ctx context.Context, favorite Favorite) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if index := indexOf(store.favorites, favorite); index >= 0 {
		updated := slices.Delete(slices.Clone(store.favorites), index, index+1)
		return false, store.commit(ctx, updated)
	}
	updated := append(slices.Clone(store.favorites), favorite)
	return true, store.commit(ctx, updated)
}

// Import merges favorites decoded from data (CBOR, JSON or JSONC) into
// the store and returns how many were new.
func (store *Store) Import(ctx context.Context, data []byte) (int, error) {
	imported, err := Decode(data, store.logger)
	if err != nil {
		return 0, err
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()
	updated := slices.Clone(store.favorites)
	added := 0
	for _, favorite := range imported {
		if indexOf(updated, favorite) < 0 {
			updated = append(updated, favorite)
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	return added, store.commit(ctx, updated)
}

// Export renders the favorites as an indented JSON document accepted
// by [Store.Import].
func (store *Store) Export() ([]byte, error) {
	store.mutex.Lock()
	favorites := slices.Clone(store.favorites)
	store.mutex.Unlock()

	data, err := json.MarshalIndent(document{Version: documentVersion, Favorites: favorites}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("favorites: exporting: %w", err)
	}
	return data, nil
}

// commit reindexes updated, writes it and installs it on success. The
// caller holds store.mutex.
func (store *Store) commit(ctx context.Context, updated []Favorite) error {
	for index := range updated {
		updated[index].Index = index
	}
	data, err := Encode(updated)
	if err != nil {
		return err
	}
	if !bytes.Equal(data, store.persisted) {
		if err := store.backend.Save(ctx, store.user, data); err != nil {
			return fmt.Errorf("favorites: saving for %q: %w", store.user, err)
		}
		store.persisted = data
	}
	store.favorites = updated
	return nil
}

// Fetcher exposes the store as a Variable option source. The query is
// ignored.
func (store *Store) Fetcher() variable.OptionFetcher {
	return variable.FetcherFunc(func(ctx context.Context, query string) ([]variable.Option, error) {
		favorites := store.List()
		options := make([]variable.Option, 0, len(favorites))
		for _, favorite := range favorites {
			options = append(options, favorite.Option())
		}
		return options, nil
	})
}

func indexOf(favorites []Favorite, target Favorite) int {
	return slices.IndexFunc(favorites, target.Equal)
}
