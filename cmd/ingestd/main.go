// Command ingestd runs ingestion operations from a yaml run profile
// against the configured local store.
//
// Usage:
//
//	ingestd -profile runs/backfill.yaml
//
// Engine settings come from NBA_INGEST_* environment variables; see
// internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/config"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/ingest"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/pace"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider/nba"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/store"
)

func main() {
	profilePath := flag.String("profile", "", "path to yaml run profile")
	flag.Parse()

	if err := run(*profilePath); err != nil {
		log.Fatalf("[ingestd] %v", err)
	}
}

func run(profilePath string) error {
	if profilePath == "" {
		return fmt.Errorf("-profile is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	clientCfg := nba.DefaultClientConfig()
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.Timeout = cfg.Timeout

	runner, err := ingest.NewRunner(st, nba.NewClient(clientCfg), pace.New(cfg.PaceInterval), cfg.ErrorBudget)
	if err != nil {
		return err
	}

	// An operator interrupt stops before the next remote call; persisted
	// results are kept.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, op := range profile.Operations {
		sum, err := dispatch(ctx, runner, op)
		if err != nil {
			return fmt.Errorf("operation %s: %w", op.Kind, err)
		}
		report(sum)
		if sum.Status == ingest.StatusInterrupted {
			log.Printf("[ingestd] interrupted, remaining operations skipped")
			break
		}
	}
	return nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.StoreDriver == "postgres" {
		return store.OpenPostgres(cfg.StoreDSN)
	}
	return store.OpenSQLite(cfg.StorePath)
}

func dispatch(ctx context.Context, runner *ingest.Runner, op config.Operation) (*ingest.Summary, error) {
	seasons := op.Seasons
	if len(seasons) == 0 {
		// Matches the historical backfill window of the source data.
		seasons = config.SeasonRange(config.DefaultStartYear, config.DefaultEndYear)
	}
	switch op.Kind {
	case "all_players":
		return runner.SyncAllPlayers(ctx)
	case "player_career":
		return runner.SyncPlayerCareers(ctx, op.Players)
	case "player_game_log":
		return runner.SyncPlayerGameLogs(ctx, op.Players, seasons)
	case "season_games":
		return runner.SyncSeasonGames(ctx, seasons)
	case "game_play_by_play":
		return runner.SyncPlayByPlay(ctx, op.Games)
	default:
		return nil, fmt.Errorf("unknown kind %q", op.Kind)
	}
}

func report(sum *ingest.Summary) {
	log.Printf("[ingestd] %s: %s fetched=%d already-present=%d skipped-empty=%d failed=%d",
		sum.Operation, sum.Status, sum.Fetched, sum.AlreadyPresent, sum.SkippedEmpty, sum.Failed)
	for _, ie := range sum.Errors {
		log.Printf("[ingestd]   %s: %v", ie.Item, ie.Err)
	}
	if sum.Status == ingest.StatusBudgetExhausted {
		log.Printf("[ingestd] %s stopped early: error budget exhausted, partial results retained", sum.Operation)
	}
}
