// Package ingest implements the incremental fetch orchestrator: it
// computes the delta between requested identities and what the store
// already holds, paces remote calls, routes payloads to the store, and
// contains per-item failures behind a consecutive-error budget.
//
// The engine keeps no durable run state. Resumability comes entirely
// from the existing-identity index re-read from the store on every run:
// a re-run retries exactly the items that did not persist last time.
package ingest

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/pace"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/store"
)

// Status reports how a run ended.
type Status string

const (
	// StatusCompleted means the whole work list was processed.
	StatusCompleted Status = "completed"

	// StatusBudgetExhausted means consecutive remote failures reached
	// the configured budget and the remaining work list was abandoned.
	// Already-persisted work is kept; this is an expected stop
	// condition, not a crash.
	StatusBudgetExhausted Status = "budget_exhausted"

	// StatusInterrupted means the caller canceled the run. No further
	// remote calls were issued; persisted results are kept.
	StatusInterrupted Status = "interrupted"
)

// ItemError records one contained per-item failure.
type ItemError struct {
	Item string
	Err  error
}

// Summary is the run result returned to the caller. Per-item failures
// never unwind past the orchestrator; they are counted here instead.
type Summary struct {
	RunID          string
	Operation      string
	Status         Status
	Fetched        int
	AlreadyPresent int
	SkippedEmpty   int
	Failed         int
	Errors         []ItemError
}

// Configuration errors fail the whole invocation before any remote call.
var (
	ErrEmptyIdentitySet = errors.New("ingest: identity set is empty")
	ErrNilStore         = errors.New("ingest: store is required")
	ErrNilProvider      = errors.New("ingest: provider is required")
	ErrBadBudget        = errors.New("ingest: error budget must be at least 1")
)

// Runner executes fetch operations against one store and one remote
// provider. All operations share the runner's pacer, so different fetch
// kinds draw from the same pacing budget.
type Runner struct {
	store  *store.Store
	remote provider.Provider
	pacer  *pace.Pacer
	budget int
}

// NewRunner validates the wiring and returns a runner.
func NewRunner(st *store.Store, remote provider.Provider, pacer *pace.Pacer, errorBudget int) (*Runner, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if remote == nil {
		return nil, ErrNilProvider
	}
	if errorBudget < 1 {
		return nil, ErrBadBudget
	}
	return &Runner{store: st, remote: remote, pacer: pacer, budget: errorBudget}, nil
}

// workItem is one pending fetch. Items are generated fresh per
// invocation and discarded once resolved.
type workItem struct {
	key    string // canonical dedup key; empty for never-deduped ops
	label  string // for logs and error reports
	params provider.Params
}

// SyncAllPlayers refreshes the player directory. The directory mirrors
// current state (team, roster status), so it is never deduped: every
// invocation re-fetches and fully overwrites.
func (r *Runner) SyncAllPlayers(ctx context.Context) (*Summary, error) {
	return r.run(ctx, provider.KindAllPlayers, []workItem{{label: "all_players"}})
}

// SyncPlayerCareers ingests career stat lines for the given players,
// skipping players already present in player_stats.
func (r *Runner) SyncPlayerCareers(ctx context.Context, playerIDs []int) (*Summary, error) {
	if len(playerIDs) == 0 {
		return nil, ErrEmptyIdentitySet
	}
	items := make([]workItem, 0, len(playerIDs))
	for _, id := range playerIDs {
		items = append(items, workItem{
			key:    store.Key(id),
			label:  "player " + store.Key(id),
			params: provider.Params{PlayerID: id},
		})
	}
	return r.run(ctx, provider.KindPlayerCareer, items)
}

// SyncPlayerGameLogs ingests per-season game logs for the player ×
// season cross product. Seasons iterate innermost per player so a
// partial run leaves complete per-player coverage up to the
// interruption point.
func (r *Runner) SyncPlayerGameLogs(ctx context.Context, playerIDs []int, seasons []string) (*Summary, error) {
	if len(playerIDs) == 0 || len(seasons) == 0 {
		return nil, ErrEmptyIdentitySet
	}
	items := make([]workItem, 0, len(playerIDs)*len(seasons))
	for _, id := range playerIDs {
		for _, season := range seasons {
			items = append(items, workItem{
				key:    store.Key(id, provider.SeasonID(season)),
				label:  "player " + store.Key(id) + " season " + season,
				params: provider.Params{PlayerID: id, Season: season},
			})
		}
	}
	return r.run(ctx, provider.KindPlayerGameLog, items)
}

// SyncSeasonGames ingests the league game log for each season not yet
// present in game_log.
func (r *Runner) SyncSeasonGames(ctx context.Context, seasons []string) (*Summary, error) {
	if len(seasons) == 0 {
		return nil, ErrEmptyIdentitySet
	}
	items := make([]workItem, 0, len(seasons))
	for _, season := range seasons {
		items = append(items, workItem{
			key:    store.Key(provider.SeasonID(season)),
			label:  "season " + season,
			params: provider.Params{Season: season},
		})
	}
	return r.run(ctx, provider.KindSeasonGames, items)
}

// SyncPlayByPlay ingests play-by-play events for the given games. Per-
// game payloads are buffered through the aggregator and persisted in a
// single bulk append.
func (r *Runner) SyncPlayByPlay(ctx context.Context, gameIDs []string) (*Summary, error) {
	if len(gameIDs) == 0 {
		return nil, ErrEmptyIdentitySet
	}
	items := make([]workItem, 0, len(gameIDs))
	for _, id := range gameIDs {
		items = append(items, workItem{
			key:    store.Key(id),
			label:  "game " + id,
			params: provider.Params{GameID: id},
		})
	}
	return r.run(ctx, provider.KindGamePlayByPlay, items)
}

// run drives the per-item state machine over the work list:
//
//	PENDING -> FETCHING -> PERSISTED | SKIPPED_EMPTY | RETRY_SCHEDULED | DROPPED
//
// Items already present never reach PENDING. Transient failures are not
// retried within the run; the caller re-invokes the operation and the
// dedup filter retries only what failed.
func (r *Runner) run(ctx context.Context, kind provider.Kind, items []workItem) (*Summary, error) {
	spec, ok := operations[kind]
	if !ok {
		return nil, errors.New("ingest: unknown operation kind")
	}

	sum := &Summary{
		RunID:     uuid.NewString(),
		Operation: kind.String(),
		Status:    StatusCompleted,
	}

	// One index read per batch, not per item: the loop's own writes are
	// excluded from dedup by construction, and a mid-loop re-read would
	// only invite read skew.
	var existing map[string]struct{}
	if len(spec.idColumns) > 0 {
		var err error
		existing, err = r.store.ExistingIDs(ctx, spec.table(), spec.idColumns...)
		if err != nil {
			return nil, err
		}
	}

	var agg *Aggregator
	buffered := 0
	if spec.batched {
		agg = NewAggregator()
	}

	consecutive := 0
	for _, item := range items {
		if ctx.Err() != nil {
			sum.Status = StatusInterrupted
			break
		}
		if _, present := existing[item.key]; present {
			sum.AlreadyPresent++
			continue
		}

		if err := r.pacer.Wait(ctx); err != nil {
			sum.Status = StatusInterrupted
			break
		}

		payload, err := r.remote.Fetch(ctx, kind, item.params)
		if err != nil {
			if ctx.Err() != nil {
				sum.Status = StatusInterrupted
				break
			}
			sum.Failed++
			sum.Errors = append(sum.Errors, ItemError{Item: item.label, Err: err})
			log.Printf("[ingest] %s: %s: fetch failed: %v", kind, item.label, err)

			consecutive++
			if consecutive >= r.budget {
				sum.Status = StatusBudgetExhausted
				log.Printf("[ingest] %s: stopping early, %d consecutive errors reached the budget; partial results retained", kind, consecutive)
				break
			}
			continue
		}
		consecutive = 0

		if payload.Empty() {
			sum.SkippedEmpty++
			log.Printf("[ingest] %s: %s: no data", kind, item.label)
			continue
		}

		if agg != nil {
			agg.Accept(payload)
			buffered++
			continue
		}

		if err := r.store.Write(ctx, spec.table(), payload, spec.mode); err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, ItemError{Item: item.label, Err: err})
			log.Printf("[ingest] %s: %s: store write failed: %v", kind, item.label, err)
			continue
		}
		sum.Fetched++
	}

	if agg != nil && buffered > 0 {
		// Buffered payloads came from remote calls that already
		// succeeded; persist them even when the run was canceled.
		flushCtx := context.WithoutCancel(ctx)
		merged, err := agg.Flush()
		if err == nil {
			err = r.store.Write(flushCtx, spec.table(), merged, spec.mode)
		}
		if err != nil {
			sum.Failed += buffered
			sum.Errors = append(sum.Errors, ItemError{Item: spec.table(), Err: err})
			log.Printf("[ingest] %s: bulk write failed: %v", kind, err)
		} else {
			sum.Fetched += buffered
		}
	}

	log.Printf("[ingest] %s run %s: %s fetched=%d present=%d empty=%d failed=%d",
		kind, sum.RunID, sum.Status, sum.Fetched, sum.AlreadyPresent, sum.SkippedEmpty, sum.Failed)
	return sum, nil
}
