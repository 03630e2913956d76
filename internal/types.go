package internal

import "strings"

const (
	ColumnBibID     = "BibID"
	ColumnShelfmark = "Shelfmark"
	ColumnFacets    = "Facets"
	ColumnFolder    = "folder"
)

type DiagnosticKind string

const (
	DiagDuplicateFolder DiagnosticKind = "duplicate_folder"
	DiagDuplicateBibID  DiagnosticKind = "duplicate_bibid"
	DiagSharedFolder    DiagnosticKind = "shared_folder"
)

type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Folder  string         `json:"folder,omitempty"`
	BibID   string         `json:"bibId,omitempty"`
	BibIDs  []string       `json:"bibIds,omitempty"`
	Message string         `json:"message"`
}

// Table is a header row plus data rows in input order. Rows may be shorter
// than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the first header cell equal to name, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at col in row, or "" when the row is short or col is -1.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

type FolderAssignment struct {
	BibID     string
	Shelfmark string
	Folder    string
}

type RunRecord struct {
	ID        int
	TraceID   string
	Stage     string
	Input     string
	Counts    map[string]int
	Status    string
	CreatedAt string
}

type ShelfmarkRequest struct {
	BibID     string
	Shelfmark string
}
