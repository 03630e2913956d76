package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mssprep/internal"
	"mssprep/internal/util"
)

type Materializer struct {
	root     string
	fileName string
	logger   *zap.Logger
}

func NewMaterializer(root, fileName string, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{root: root, fileName: fileName, logger: logger}
}

type MaterializeResult struct {
	Written int
	Skipped int
}

func (r MaterializeResult) Counts() map[string]int {
	return map[string]int{"written": r.Written, "skipped": r.Skipped}
}

// Materialize creates root/folder if needed and overwrites its keyword file
// with one facet per line. It returns the keyword file path.
func (m *Materializer) Materialize(folder, facets string) (string, error) {
	if err := validFolder(folder); err != nil {
		return "", err
	}

	dir := filepath.Join(m.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, kw := range util.SplitKeywords(facets) {
		b.WriteString(kw)
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, m.fileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// MaterializeTable runs Materialize for each row of a folder/Facets table.
// Rows with an unusable folder value are logged and skipped.
func (m *Materializer) MaterializeTable(t internal.Table) (MaterializeResult, error) {
	folderCol := t.Column(internal.ColumnFolder)
	facetsCol := t.Column(internal.ColumnFacets)
	if folderCol < 0 || facetsCol < 0 {
		return MaterializeResult{}, fmt.Errorf("keyword table must have %s and %s columns, got %v", internal.ColumnFolder, internal.ColumnFacets, t.Header)
	}

	var result MaterializeResult
	for i, row := range t.Rows {
		folder := strings.TrimSpace(internal.Cell(row, folderCol))
		if err := validFolder(folder); err != nil {
			m.logger.Warn("skipping row", zap.Int("row", i+2), zap.String("folder", folder), zap.Error(err))
			result.Skipped++
			continue
		}
		if _, err := m.Materialize(folder, internal.Cell(row, facetsCol)); err != nil {
			return result, fmt.Errorf("row %d folder %s: %w", i+2, folder, err)
		}
		result.Written++
	}
	return result, nil
}

func validFolder(folder string) error {
	switch {
	case folder == "":
		return fmt.Errorf("empty folder")
	case folder == "." || folder == "..":
		return fmt.Errorf("invalid folder %q", folder)
	case strings.ContainsAny(folder, `/\`):
		return fmt.Errorf("folder %q is not a single path element", folder)
	}
	return nil
}
