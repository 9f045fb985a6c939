package ingest

import (
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/store"
)

// opSpec binds a fetch kind to its target table, dedup identity, and
// write semantics. Resolved from the kind enum once here, never by
// runtime string dispatch.
type opSpec struct {
	kind     provider.Kind
	category string
	name     string

	// idColumns is the identity projection used for dedup. Empty means
	// the operation is never deduped (full-replace targets re-fetch
	// every invocation because their source of truth is current state).
	idColumns []string

	mode store.WriteMode

	// batched operations buffer per-item payloads through the
	// aggregator and land in one bulk write.
	batched bool
}

// table returns the {category}_{kind} target table name.
func (s opSpec) table() string { return s.category + "_" + s.name }

var operations = map[provider.Kind]opSpec{
	provider.KindAllPlayers: {
		kind:     provider.KindAllPlayers,
		category: "player",
		name:     "info",
		mode:     store.ModeReplace,
	},
	provider.KindPlayerCareer: {
		kind:      provider.KindPlayerCareer,
		category:  "player",
		name:      "stats",
		idColumns: []string{"PLAYER_ID"},
		mode:      store.ModeAppend,
	},
	provider.KindPlayerGameLog: {
		kind:      provider.KindPlayerGameLog,
		category:  "player",
		name:      "game_log",
		idColumns: []string{"PLAYER_ID", "SEASON_ID"},
		mode:      store.ModeAppend,
	},
	provider.KindSeasonGames: {
		kind:      provider.KindSeasonGames,
		category:  "game",
		name:      "log",
		idColumns: []string{"SEASON_ID"},
		mode:      store.ModeAppend,
	},
	provider.KindGamePlayByPlay: {
		kind:      provider.KindGamePlayByPlay,
		category:  "game",
		name:      "pbp",
		idColumns: []string{"GAME_ID"},
		mode:      store.ModeAppend,
		batched:   true,
	},
}
