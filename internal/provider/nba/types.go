package nba

import (
	"encoding/json"
	"fmt"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

// envelope is the stats API response wrapper. Every endpoint returns one
// or more named result sets; headers double as the target table's column
// layout.
type envelope struct {
	Resource   string          `json:"resource"`
	Parameters json.RawMessage `json:"parameters"`
	ResultSets []resultSet     `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`

	// RowSet cells are heterogeneous per column (strings, numbers,
	// nulls), so they decode as plain any values.
	RowSet [][]any `json:"rowSet"`
}

// resultTable extracts the named result set as a Table, falling back to
// the first set when name is empty or absent (several endpoints expose a
// single set whose name drifted across API revisions).
func (e *envelope) resultTable(name string) (*table.Table, error) {
	if len(e.ResultSets) == 0 {
		return nil, fmt.Errorf("response has no result sets")
	}
	rs := &e.ResultSets[0]
	if name != "" {
		for i := range e.ResultSets {
			if e.ResultSets[i].Name == name {
				rs = &e.ResultSets[i]
				break
			}
		}
	}

	out := table.New(rs.Headers...)
	for _, row := range rs.RowSet {
		if len(row) != len(rs.Headers) {
			return nil, fmt.Errorf("result set %q: row has %d cells, expected %d", rs.Name, len(row), len(rs.Headers))
		}
		out.Rows = append(out.Rows, normalizeRow(row))
	}
	return out, nil
}

// normalizeRow converts decoded JSON cells into store-friendly values:
// whole floats become int64 so identity columns round-trip as integers.
func normalizeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case float64:
			if x == float64(int64(x)) {
				out[i] = int64(x)
			} else {
				out[i] = x
			}
		default:
			out[i] = v
		}
	}
	return out
}
