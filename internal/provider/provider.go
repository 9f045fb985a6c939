// Package provider defines the contract between the ingestion engine and
// the remote statistics provider. The provider is an opaque remote call:
// given a fetch kind and parameters it returns tabular rows, an empty
// table when no data exists, or a classified error.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

// Kind identifies one remote fetch operation. Handlers are resolved from
// this enum once at startup, never by runtime string lookup.
type Kind int

const (
	KindAllPlayers Kind = iota
	KindPlayerCareer
	KindPlayerGameLog
	KindSeasonGames
	KindGamePlayByPlay
)

func (k Kind) String() string {
	switch k {
	case KindAllPlayers:
		return "all_players"
	case KindPlayerCareer:
		return "player_career"
	case KindPlayerGameLog:
		return "player_game_log"
	case KindSeasonGames:
		return "season_games"
	case KindGamePlayByPlay:
		return "game_play_by_play"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Params carries the work-item parameters a fetch kind needs. Unused
// fields stay zero.
type Params struct {
	PlayerID int
	Season   string
	GameID   string
}

// Provider is the remote statistics source. A successful call with zero
// rows is an empty result, not an error.
type Provider interface {
	Fetch(ctx context.Context, kind Kind, params Params) (*table.Table, error)
}

// SeasonID converts a season label ("2023-24") into the provider's
// regular-season SEASON_ID value ("22023"), which is what game-log and
// game-finder result sets carry in their SEASON_ID column. Dedup keys
// must use this form so requested seasons match stored rows.
func SeasonID(label string) string {
	if i := strings.IndexByte(label, '-'); i > 0 {
		return "2" + label[:i]
	}
	return label
}

// Class separates errors the caller may retry on a later run from errors
// that will repeat deterministically.
type Class int

const (
	// ClassTransient covers network failures, timeouts and rate-limit
	// responses. Counted against the run's error budget; a re-run
	// naturally retries only these through the dedup filter.
	ClassTransient Class = iota

	// ClassFatal covers malformed responses and client-side request
	// errors. The work item is dropped for this run.
	ClassFatal
)

func (c Class) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "fatal"
}

// RemoteError is a classified failure from the remote provider.
type RemoteError struct {
	Kind   Kind
	Class  Class
	Status int // HTTP status when applicable, else 0
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s remote error (status %d): %v", e.Kind, e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s remote error: %v", e.Kind, e.Class, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Transient reports whether err is a retryable remote failure.
func Transient(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Class == ClassTransient
}
