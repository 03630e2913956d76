package pipeline

import (
	"context"
	"fmt"

	"mssprep/internal"
)

type ShelfmarkResolver interface {
	Resolve(ctx context.Context, bibid, shelfmark string) (string, error)
}

type FolderService struct {
	resolver   ShelfmarkResolver
	skipBibIDs []string
}

func NewFolderService(resolver ShelfmarkResolver, skipBibIDs []string) *FolderService {
	return &FolderService{resolver: resolver, skipBibIDs: skipBibIDs}
}

type FolderResult struct {
	Output      internal.Table
	Assignments []internal.FolderAssignment
	Diagnostics []internal.Diagnostic
	Read        int
}

func (r FolderResult) Counts() map[string]int {
	return map[string]int{
		"read":        r.Read,
		"selected":    len(r.Output.Rows),
		"diagnostics": len(r.Diagnostics),
	}
}

// Process selects the keyword row of each record, resolves its full
// shelfmark and appends the folder column. On error the result holds the
// rows and diagnostics produced before the failure.
func (s *FolderService) Process(ctx context.Context, in internal.Table) (FolderResult, error) {
	bibCol := in.Column(internal.ColumnBibID)
	shelfCol := in.Column(internal.ColumnShelfmark)
	if bibCol < 0 || shelfCol < 0 {
		return FolderResult{}, fmt.Errorf("input must have %s and %s columns, got %v", internal.ColumnBibID, internal.ColumnShelfmark, in.Header)
	}

	header := append(append([]string(nil), in.Header...), internal.ColumnFolder)
	result := FolderResult{Output: internal.Table{Header: header}, Read: len(in.Rows)}

	namer := NewFolderNamer()
	selector := NewSelector(s.skipBibIDs)
	lastUsedShelfmark := ""
	haveLast := false

	for _, row := range in.Rows {
		bibid := internal.Cell(row, bibCol)
		if !selector.Accept(bibid) {
			continue
		}

		shelfmark, err := s.resolver.Resolve(ctx, bibid, internal.Cell(row, shelfCol))
		if err != nil {
			result.Diagnostics = namer.Diagnostics()
			return result, err
		}

		last := lastUsedShelfmark
		if !haveLast {
			// No previous row: make sure nothing can compare equal.
			last = "\x00"
		}
		folder := namer.FolderName(shelfmark, bibid, last)
		lastUsedShelfmark = shelfmark
		haveLast = true

		out := make([]string, len(in.Header)+1)
		copy(out, row)
		out[shelfCol] = shelfmark
		out[len(in.Header)] = folder
		result.Output.Rows = append(result.Output.Rows, out)
		result.Assignments = append(result.Assignments, internal.FolderAssignment{BibID: bibid, Shelfmark: shelfmark, Folder: folder})
	}

	result.Diagnostics = append(namer.Diagnostics(), namer.Summary()...)
	return result, nil
}
