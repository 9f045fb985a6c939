package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Season range offered when a profile omits an explicit season list.
const (
	DefaultStartYear = 1985
	DefaultEndYear   = 2024
)

// Profile is a yaml run profile: an ordered list of operations to
// execute with their identity sets.
type Profile struct {
	Operations []Operation `yaml:"operations"`
}

// Operation selects one fetch operation and its inputs. Unused fields
// stay empty; which fields a kind requires is validated by the runner.
type Operation struct {
	Kind    string   `yaml:"kind"` // all_players | player_career | player_game_log | season_games | game_play_by_play
	Players []int    `yaml:"players,omitempty"`
	Seasons []string `yaml:"seasons,omitempty"`
	Games   []string `yaml:"games,omitempty"`
}

// LoadProfile reads and parses a yaml run profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	if len(p.Operations) == 0 {
		return nil, fmt.Errorf("profile %s: no operations", path)
	}
	return &p, nil
}

// SeasonRange generates season labels from startYear through endYear
// inclusive, e.g. SeasonRange(1985, 1987) = ["1985-86", "1986-87",
// "1987-88"].
func SeasonRange(startYear, endYear int) []string {
	if endYear < startYear {
		return nil
	}
	seasons := make([]string, 0, endYear-startYear+1)
	for y := startYear; y <= endYear; y++ {
		seasons = append(seasons, fmt.Sprintf("%d-%02d", y, (y+1)%100))
	}
	return seasons
}
