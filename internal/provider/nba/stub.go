package nba

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
)

// StubServer hosts an in-memory stats API for tests (no network
// listeners). Endpoints serve small deterministic result sets; failures
// are injected per test through FailNext.
type StubServer struct {
	mu        sync.Mutex
	requests  int
	failures  int
	failCode  int
	emptyPBP  map[string]bool
	handler   http.Handler
	transport http.RoundTripper
	baseURL   string
}

// NewStubServer constructs a deterministic stub without binding a port.
func NewStubServer() *StubServer {
	s := &StubServer{
		baseURL:  "http://stub.stats.local",
		emptyPBP: map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/commonallplayers", s.handleAllPlayers)
	mux.HandleFunc("/stats/playercareerstats", s.handlePlayerCareer)
	mux.HandleFunc("/stats/playergamelog", s.handlePlayerGameLog)
	mux.HandleFunc("/stats/leaguegamefinder", s.handleSeasonGames)
	mux.HandleFunc("/stats/playbyplayv2", s.handlePlayByPlay)
	s.handler = mux
	s.transport = &stubRoundTripper{server: s}
	return s
}

// URL returns the stub base URL (no listener is bound).
func (s *StubServer) URL() string { return s.baseURL }

// Transport returns a RoundTripper serving requests in-process.
func (s *StubServer) Transport() http.RoundTripper { return s.transport }

// Requests returns how many API calls the stub has served.
func (s *StubServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// FailNext makes the next n requests fail with the given HTTP status.
func (s *StubServer) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failCode = status
}

// SetEmptyPlayByPlay makes playbyplayv2 return zero rows for gameID.
func (s *StubServer) SetEmptyPlayByPlay(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyPBP[gameID] = true
}

type stubRoundTripper struct {
	server *StubServer
}

func (rt *stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s := rt.server
	s.mu.Lock()
	s.requests++
	if s.failures > 0 {
		s.failures--
		code := s.failCode
		s.mu.Unlock()
		rec := httptest.NewRecorder()
		rec.WriteHeader(code)
		fmt.Fprintf(rec, `{"message":"injected failure"}`)
		return rec.Result(), nil
	}
	s.mu.Unlock()

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

func (s *StubServer) handleAllPlayers(w http.ResponseWriter, r *http.Request) {
	writeResultSet(w, "CommonAllPlayers",
		[]string{"PERSON_ID", "DISPLAY_FIRST_LAST", "FROM_YEAR", "TO_YEAR", "TEAM_ID"},
		[][]any{
			{2544, "LeBron James", "2003", "2024", 1610612747},
			{201939, "Stephen Curry", "2009", "2024", 1610612744},
			{1629029, "Luka Doncic", "2018", "2024", 1610612742},
		})
}

func (s *StubServer) handlePlayerCareer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("PlayerID"))
	if err != nil {
		http.Error(w, `{"message":"bad player id"}`, http.StatusBadRequest)
		return
	}
	headers := []string{"PLAYER_ID", "SEASON_ID", "TEAM_ID", "GP", "PTS"}
	rows := [][]any{{id, "2023-24", 1610612747, 71, 1822}}
	writeResultSet(w, "SeasonTotalsRegularSeason", headers, rows)
}

func (s *StubServer) handlePlayerGameLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, _ := strconv.Atoi(q.Get("PlayerID"))
	season := q.Get("Season")
	seasonID := provider.SeasonID(season)
	headers := []string{"PLAYER_ID", "SEASON_ID", "GAME_ID", "GAME_DATE", "PTS"}
	rows := [][]any{
		{id, seasonID, "002" + seasonID[1:] + "01", season + "-11-01", 31},
		{id, seasonID, "002" + seasonID[1:] + "02", season + "-11-03", 28},
	}
	writeResultSet(w, "PlayerGameLog", headers, rows)
}

func (s *StubServer) handleSeasonGames(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("Season")
	seasonID := provider.SeasonID(season)
	headers := []string{"SEASON_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "WL"}
	rows := [][]any{
		{seasonID, "00" + seasonID[1:] + "001", seasonID[1:] + "-10-24", "LAL vs. GSW", "W"},
		{seasonID, "00" + seasonID[1:] + "002", seasonID[1:] + "-10-26", "BOS @ MIA", "L"},
	}
	writeResultSet(w, "LeagueGameFinderResults", headers, rows)
}

func (s *StubServer) handlePlayByPlay(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("GameID")
	headers := []string{"GAME_ID", "EVENTNUM", "PERIOD", "EVENTMSGTYPE", "HOMEDESCRIPTION"}

	s.mu.Lock()
	empty := s.emptyPBP[gameID]
	s.mu.Unlock()

	var rows [][]any
	if !empty {
		rows = [][]any{
			{gameID, 1, 1, 12, "Start of 1st Period"},
			{gameID, 2, 1, 10, "Jump Ball"},
			{gameID, 3, 1, 1, "Running Layup"},
		}
	}
	writeResultSet(w, "PlayByPlay", headers, rows)
}

func writeResultSet(w http.ResponseWriter, name string, headers []string, rows [][]any) {
	if rows == nil {
		rows = [][]any{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"resource": name,
		"resultSets": []map[string]any{
			{"name": name, "headers": headers, "rowSet": rows},
		},
	})
}
