package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.StoreDriver != "sqlite" {
		t.Fatalf("default driver %q", cfg.StoreDriver)
	}
	if cfg.PaceInterval != time.Second {
		t.Fatalf("default pace interval %v", cfg.PaceInterval)
	}
	if cfg.ErrorBudget != 5 {
		t.Fatalf("default error budget %d", cfg.ErrorBudget)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "oracle" }},
		{"sqlite without path", func(c *Config) { c.StorePath = "" }},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = "postgres"; c.StoreDSN = "" }},
		{"zero budget", func(c *Config) { c.ErrorBudget = 0 }},
		{"negative pacing", func(c *Config) { c.PaceInterval = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mut(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	data := `
operations:
  - kind: all_players
  - kind: player_career
    players: [2544, 201939]
  - kind: player_game_log
    players: [2544]
    seasons: ["2023-24"]
  - kind: game_play_by_play
    games: ["0022300001"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Operations) != 4 {
		t.Fatalf("expected 4 operations, got %d", len(p.Operations))
	}
	if p.Operations[1].Players[0] != 2544 {
		t.Fatalf("players not parsed: %+v", p.Operations[1])
	}
	if p.Operations[2].Seasons[0] != "2023-24" {
		t.Fatalf("seasons not parsed: %+v", p.Operations[2])
	}
}

func TestLoadProfileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("operations: []\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for empty profile")
	}
}

func TestSeasonRange(t *testing.T) {
	seasons := SeasonRange(1999, 2001)
	want := []string{"1999-00", "2000-01", "2001-02"}
	if len(seasons) != len(want) {
		t.Fatalf("got %v", seasons)
	}
	for i := range want {
		if seasons[i] != want[i] {
			t.Fatalf("season %d: got %s, want %s", i, seasons[i], want[i])
		}
	}
}
