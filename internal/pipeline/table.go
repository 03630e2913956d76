package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mssprep/internal"
)

// ReadTable loads a CSV or, for .xlsx paths, the first worksheet of a
// workbook. The first row is the header.
func ReadTable(path string) (internal.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSXTable(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return internal.Table{}, err
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

func ReadCSV(r io.Reader) (internal.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return internal.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRecords(records)
}

func readXLSXTable(path string) (internal.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return internal.Table{}, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return internal.Table{}, err
	}
	return tableFromRecords(rows)
}

func tableFromRecords(records [][]string) (internal.Table, error) {
	if len(records) == 0 {
		return internal.Table{}, fmt.Errorf("table has no header row")
	}
	header := append([]string(nil), records[0]...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return internal.Table{Header: header, Rows: records[1:]}, nil
}

func WriteCSV(w io.Writer, t internal.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

func WriteCSVFile(path string, t internal.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
