package nba

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

// endpointSpec binds a fetch kind to its API path, fixed query
// parameters, and result-set name. The table is resolved once at package
// init; fetch kinds never dispatch through string lookup at call time.
type endpointSpec struct {
	path      string
	resultSet string
	query     func(p provider.Params) (url.Values, error)
}

var endpoints = map[provider.Kind]endpointSpec{
	provider.KindAllPlayers: {
		path:      "/stats/commonallplayers",
		resultSet: "CommonAllPlayers",
		query: func(provider.Params) (url.Values, error) {
			return url.Values{
				"IsOnlyCurrentSeason": {"0"},
				"LeagueID":            {"00"},
			}, nil
		},
	},
	provider.KindPlayerCareer: {
		path:      "/stats/playercareerstats",
		resultSet: "SeasonTotalsRegularSeason",
		query: func(p provider.Params) (url.Values, error) {
			if p.PlayerID == 0 {
				return nil, fmt.Errorf("player id is required")
			}
			return url.Values{
				"PlayerID":  {strconv.Itoa(p.PlayerID)},
				"PerMode36": {"Totals"},
			}, nil
		},
	},
	provider.KindPlayerGameLog: {
		path:      "/stats/playergamelog",
		resultSet: "PlayerGameLog",
		query: func(p provider.Params) (url.Values, error) {
			if p.PlayerID == 0 || p.Season == "" {
				return nil, fmt.Errorf("player id and season are required")
			}
			return url.Values{
				"PlayerID":   {strconv.Itoa(p.PlayerID)},
				"Season":     {p.Season},
				"SeasonType": {"Regular Season"},
			}, nil
		},
	},
	provider.KindSeasonGames: {
		path:      "/stats/leaguegamefinder",
		resultSet: "LeagueGameFinderResults",
		query: func(p provider.Params) (url.Values, error) {
			if p.Season == "" {
				return nil, fmt.Errorf("season is required")
			}
			return url.Values{
				"Season":       {p.Season},
				"LeagueID":     {"00"},
				"PlayerOrTeam": {"T"},
			}, nil
		},
	},
	provider.KindGamePlayByPlay: {
		path:      "/stats/playbyplayv2",
		resultSet: "PlayByPlay",
		query: func(p provider.Params) (url.Values, error) {
			if p.GameID == "" {
				return nil, fmt.Errorf("game id is required")
			}
			return url.Values{
				"GameID":      {p.GameID},
				"StartPeriod": {"0"},
				"EndPeriod":   {"10"},
			}, nil
		},
	},
}

// Fetch implements provider.Provider.
func (c *Client) Fetch(ctx context.Context, kind provider.Kind, params provider.Params) (*table.Table, error) {
	spec, ok := endpoints[kind]
	if !ok {
		return nil, &provider.RemoteError{Kind: kind, Class: provider.ClassFatal, Err: fmt.Errorf("unknown fetch kind")}
	}
	query, err := spec.query(params)
	if err != nil {
		return nil, &provider.RemoteError{Kind: kind, Class: provider.ClassFatal, Err: err}
	}
	return c.get(ctx, kind, spec.path, query, spec.resultSet)
}
