// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/explore-profiles/lib/codec"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

// documentVersion is written into every encoded blob.
const documentVersion = 1

// document is the persisted form of a favorites list.
type document struct {
	Version   int        `json:"version"`
	Favorites []Favorite `json:"favorites"`
}

// storedFavorite accepts both the current and the legacy field name
// for query parameters, and any panel type string.
type storedFavorite struct {
	Index             int                   `json:"index"`
	QueryParams       *griditem.QueryParams `json:"queryParams,omitempty"`
	QueryRunnerParams *griditem.QueryParams `json:"queryRunnerParams,omitempty"`
	PanelType         string                `json:"panelType"`
}

type storedDocument struct {
	Version   int              `json:"version"`
	Favorites []storedFavorite `json:"favorites"`
}

// Encode renders favorites as a deterministic CBOR blob.
func Encode(favorites []Favorite) ([]byte, error) {
	data, err := codec.Marshal(document{Version: documentVersion, Favorites: favorites})
	if err != nil {
		return nil, fmt.Errorf("favorites: encoding: %w", err)
	}
	return data, nil
}

// Decode reads a blob written by [Encode], or a JSON/JSONC document or
// bare list. Invalid entries are dropped and logged; the result is
// deduplicated and reindexed. An error means nothing could be read.
func Decode(data []byte, logger *slog.Logger) ([]Favorite, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var stored []storedFavorite
	if codec.IsCBOR(data) {
		var decoded storedDocument
		if err := codec.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("favorites: decoding CBOR: %w", err)
		}
		stored = decoded.Favorites
	} else {
		text := bytes.TrimSpace(jsonc.ToJSON(data))
		if len(text) > 0 && text[0] == '[' {
			if err := json.Unmarshal(text, &stored); err != nil {
				return nil, fmt.Errorf("favorites: decoding JSON list: %w", err)
			}
		} else {
			var decoded storedDocument
			if err := json.Unmarshal(text, &decoded); err != nil {
				return nil, fmt.Errorf("favorites: decoding JSON: %w", err)
			}
			stored = decoded.Favorites
		}
	}

	var favorites []Favorite
	for position, entry := range stored {
		params := entry.QueryParams
		if params == nil {
			params = entry.QueryRunnerParams
		}
		if params == nil || params.ServiceName == "" {
			logger.Warn("dropping favorite without a service", "position", position)
			continue
		}

		panelType, known := griditem.ParsePanelType(entry.PanelType)
		if !known {
			logger.Warn("unknown favorite panel type, using timeseries",
				"position", position,
				"panel_type", entry.PanelType,
			)
		}

		favorite := FromItem(griditem.Item{QueryParams: *params, PanelType: panelType})
		if indexOf(favorites, favorite) >= 0 {
			continue
		}
		favorite.Index = len(favorites)
		favorites = append(favorites, favorite)
	}
	return favorites, nil
}
