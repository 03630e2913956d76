package pipeline

import (
	"strings"

	"mssprep/internal"
)

// Selector keeps the second row of each consecutive BibID pair. The first row
// of a pair carries browse facets, the second the keywords we want.
type Selector struct {
	skip    map[string]struct{}
	prev    string
	hasPrev bool
}

func NewSelector(skipBibIDs []string) *Selector {
	skip := make(map[string]struct{}, len(skipBibIDs))
	for _, id := range skipBibIDs {
		skip[strings.TrimSpace(id)] = struct{}{}
	}
	return &Selector{skip: skip}
}

// Accept reports whether a row with bibid should be processed. Skipped and
// blank bibids leave the previous bibid untouched.
func (s *Selector) Accept(bibid string) bool {
	if strings.TrimSpace(bibid) == "" {
		return false
	}
	if _, ok := s.skip[bibid]; ok {
		return false
	}
	selected := s.hasPrev && s.prev == bibid
	s.prev = bibid
	s.hasPrev = true
	return selected
}

// SelectRows returns the indexes of table rows the selector accepts.
func SelectRows(table internal.Table, skipBibIDs []string) []int {
	col := table.Column(internal.ColumnBibID)
	sel := NewSelector(skipBibIDs)
	var out []int
	for i, row := range table.Rows {
		if sel.Accept(internal.Cell(row, col)) {
			out = append(out, i)
		}
	}
	return out
}

// ShelfmarkRequests returns the bibid/shelfmark pairs of the selected rows.
func ShelfmarkRequests(table internal.Table, skipBibIDs []string) []internal.ShelfmarkRequest {
	bibCol := table.Column(internal.ColumnBibID)
	shelfCol := table.Column(internal.ColumnShelfmark)
	var out []internal.ShelfmarkRequest
	for _, i := range SelectRows(table, skipBibIDs) {
		row := table.Rows[i]
		out = append(out, internal.ShelfmarkRequest{
			BibID:     internal.Cell(row, bibCol),
			Shelfmark: internal.Cell(row, shelfCol),
		})
	}
	return out
}
