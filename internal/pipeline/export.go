package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mssprep/internal"
)

// ExportTableToXLSX writes t to a single-sheet workbook with a frozen header
// row, for reviewing folder assignments.
func ExportTableToXLSX(t internal.Table, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(sheet, cell, h)
	}

	for i, row := range t.Rows {
		r := i + 2
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			// BibIDs overflow float64, so everything stays a string.
			_ = f.SetCellStr(sheet, cell, value)
		}
	}

	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
