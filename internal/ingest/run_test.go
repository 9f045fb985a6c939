package ingest

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/pace"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider/nba"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/store"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

func newTestRunner(t *testing.T, budget int) (*Runner, *nba.StubServer, *store.Store) {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	stub := nba.NewStubServer()
	client := nba.NewClient(&nba.ClientConfig{
		BaseURL:   stub.URL(),
		Transport: stub.Transport(),
	})

	runner, err := NewRunner(st, client, pace.New(0), budget)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner, stub, st
}

func TestSyncPlayerCareersEmptyStore(t *testing.T) {
	runner, stub, st := newTestRunner(t, 5)
	ctx := context.Background()

	sum, err := runner.SyncPlayerCareers(ctx, []int{2544, 201939})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sum.Status != StatusCompleted {
		t.Fatalf("status %s, want completed", sum.Status)
	}
	if sum.Fetched != 2 || sum.AlreadyPresent != 0 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if stub.Requests() != 2 {
		t.Fatalf("expected 2 remote calls, saw %d", stub.Requests())
	}

	ids, err := st.ExistingIDs(ctx, "player_stats", "PLAYER_ID")
	if err != nil {
		t.Fatalf("existing ids: %v", err)
	}
	for _, want := range []string{store.Key(2544), store.Key(201939)} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("index missing %s after run: %v", want, ids)
		}
	}
}

func TestSyncPlayerCareersIdempotent(t *testing.T) {
	runner, stub, st := newTestRunner(t, 5)
	ctx := context.Background()

	if _, err := runner.SyncPlayerCareers(ctx, []int{2544, 201939}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := stub.Requests()

	sum, err := runner.SyncPlayerCareers(ctx, []int{2544, 201939})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stub.Requests() != callsAfterFirst {
		t.Fatalf("second run issued remote calls: %d -> %d", callsAfterFirst, stub.Requests())
	}
	if sum.Fetched != 0 || sum.AlreadyPresent != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	got, err := st.Query(ctx, "SELECT COUNT(*) FROM player_stats")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.Rows[0][0].(int64) != 2 {
		t.Fatalf("append table changed on second run: %v rows", got.Rows[0][0])
	}
}

func TestErrorBudgetStopsRun(t *testing.T) {
	runner, stub, st := newTestRunner(t, 3)
	ctx := context.Background()

	stub.FailNext(100, http.StatusBadGateway)

	sum, err := runner.SyncPlayerCareers(ctx, []int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sum.Status != StatusBudgetExhausted {
		t.Fatalf("status %s, want budget_exhausted", sum.Status)
	}
	if sum.Failed != 3 {
		t.Fatalf("expected 3 failures, got %d", sum.Failed)
	}
	if stub.Requests() != 3 {
		t.Fatalf("expected at most budget calls, saw %d", stub.Requests())
	}

	ids, err := st.ExistingIDs(ctx, "player_stats", "PLAYER_ID")
	if err != nil {
		t.Fatalf("existing ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("no rows should persist, found %d ids", len(ids))
	}
}

func TestConsecutiveErrorCounterResetsOnSuccess(t *testing.T) {
	runner, stub, _ := newTestRunner(t, 2)
	ctx := context.Background()

	stub.FailNext(1, http.StatusBadGateway)

	sum, err := runner.SyncPlayerCareers(ctx, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sum.Status != StatusCompleted {
		t.Fatalf("status %s, want completed", sum.Status)
	}
	if sum.Failed != 1 || sum.Fetched != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestPlayByPlayAggregation(t *testing.T) {
	runner, stub, st := newTestRunner(t, 5)
	ctx := context.Background()

	stub.SetEmptyPlayByPlay("0012300002")

	sum, err := runner.SyncPlayByPlay(ctx, []string{"0012300001", "0012300002"})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sum.Fetched != 1 || sum.SkippedEmpty != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	got, err := st.Query(ctx, `SELECT DISTINCT "GAME_ID" FROM game_pbp`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.Len() != 1 || got.Rows[0][0] != "0012300001" {
		t.Fatalf("expected only game 0012300001 rows, got %v", got.Rows)
	}
}

func TestPlayByPlayDedupOnRerun(t *testing.T) {
	runner, stub, _ := newTestRunner(t, 5)
	ctx := context.Background()

	stub.SetEmptyPlayByPlay("0012300002")

	if _, err := runner.SyncPlayByPlay(ctx, []string{"0012300001", "0012300002"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	calls := stub.Requests()

	sum, err := runner.SyncPlayByPlay(ctx, []string{"0012300001", "0012300002"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.AlreadyPresent != 1 {
		t.Fatalf("game 0012300001 should dedup: %+v", sum)
	}
	// The empty game persisted nothing, so it is fetched again.
	if sum.SkippedEmpty != 1 {
		t.Fatalf("empty game should be re-fetched and skipped: %+v", sum)
	}
	if stub.Requests() != calls+1 {
		t.Fatalf("expected exactly 1 more call, saw %d", stub.Requests()-calls)
	}
}

func TestAllPlayersReplaceNeverAccumulates(t *testing.T) {
	runner, _, st := newTestRunner(t, 5)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sum, err := runner.SyncAllPlayers(ctx)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if sum.Fetched != 1 {
			t.Fatalf("run %d: %+v", i, sum)
		}
	}

	got, err := st.Query(ctx, "SELECT COUNT(*) FROM player_info")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.Rows[0][0].(int64) != 3 {
		t.Fatalf("replace table accumulated rows: %v", got.Rows[0][0])
	}
}

func TestSeasonGamesDedup(t *testing.T) {
	runner, stub, _ := newTestRunner(t, 5)
	ctx := context.Background()

	if _, err := runner.SyncSeasonGames(ctx, []string{"2023-24"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	calls := stub.Requests()

	sum, err := runner.SyncSeasonGames(ctx, []string{"2023-24"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.AlreadyPresent != 1 || stub.Requests() != calls {
		t.Fatalf("season should dedup: %+v calls=%d", sum, stub.Requests()-calls)
	}
}

func TestCancellationReturnsInterrupted(t *testing.T) {
	runner, stub, _ := newTestRunner(t, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := runner.SyncPlayerCareers(ctx, []int{2544, 201939})
	if err != nil {
		t.Fatalf("canceled run must still return a summary: %v", err)
	}
	if sum.Status != StatusInterrupted {
		t.Fatalf("status %s, want interrupted", sum.Status)
	}
	if stub.Requests() != 0 {
		t.Fatalf("no remote calls after cancel, saw %d", stub.Requests())
	}
}

// recordingProvider captures fetch order for cross-product assertions.
type recordingProvider struct {
	calls []provider.Params
}

func (p *recordingProvider) Fetch(_ context.Context, _ provider.Kind, params provider.Params) (*table.Table, error) {
	p.calls = append(p.calls, params)
	tbl := table.New("PLAYER_ID", "SEASON_ID")
	_ = tbl.Append(params.PlayerID, provider.SeasonID(params.Season))
	return tbl, nil
}

func TestGameLogSeasonsIterateInnermost(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	rec := &recordingProvider{}
	runner, err := NewRunner(st, rec, pace.New(0), 5)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	sum, err := runner.SyncPlayerGameLogs(context.Background(), []int{1, 2}, []string{"2022-23", "2023-24"})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sum.Fetched != 4 {
		t.Fatalf("expected 4 items fetched: %+v", sum)
	}

	want := []provider.Params{
		{PlayerID: 1, Season: "2022-23"},
		{PlayerID: 1, Season: "2023-24"},
		{PlayerID: 2, Season: "2022-23"},
		{PlayerID: 2, Season: "2023-24"},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(rec.calls))
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("call %d: got %+v, want %+v", i, rec.calls[i], want[i])
		}
	}
}

func TestConfigurationErrorsFailBeforeAnyFetch(t *testing.T) {
	runner, stub, _ := newTestRunner(t, 5)
	ctx := context.Background()

	if _, err := runner.SyncPlayerCareers(ctx, nil); err != ErrEmptyIdentitySet {
		t.Fatalf("expected ErrEmptyIdentitySet, got %v", err)
	}
	if _, err := runner.SyncPlayerGameLogs(ctx, []int{1}, nil); err != ErrEmptyIdentitySet {
		t.Fatalf("expected ErrEmptyIdentitySet, got %v", err)
	}
	if stub.Requests() != 0 {
		t.Fatalf("config errors must precede remote calls, saw %d", stub.Requests())
	}
}

func TestNewRunnerValidation(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	rec := &recordingProvider{}

	if _, err := NewRunner(nil, rec, pace.New(0), 5); err != ErrNilStore {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
	if _, err := NewRunner(st, nil, pace.New(0), 5); err != ErrNilProvider {
		t.Fatalf("expected ErrNilProvider, got %v", err)
	}
	if _, err := NewRunner(st, rec, pace.New(0), 0); err != ErrBadBudget {
		t.Fatalf("expected ErrBadBudget, got %v", err)
	}
}
