package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"mssprep/internal"
)

func TestMaterializeWritesOneKeywordPerLine(t *testing.T) {
	root := t.TempDir()
	m := NewMaterializer(root, "keywords.txt", nil)

	path, err := m.Materialize("mscoll764_item124", "15th century, Legal, Italian")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(root, "mscoll764_item124", "keywords.txt") {
		t.Fatalf("path=%s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "15th century\nLegal\nItalian\n" {
		t.Fatalf("content=%q", string(b))
	}
}

func TestMaterializeOverwrites(t *testing.T) {
	root := t.TempDir()
	m := NewMaterializer(root, "keywords.txt", nil)

	if _, err := m.Materialize("ljs101", "Paper, Arabic, Hadith, Fragment"); err != nil {
		t.Fatal(err)
	}
	path, err := m.Materialize("ljs101", "Paper")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "Paper\n" {
		t.Fatalf("content=%q", string(b))
	}
}

func TestMaterializeEmptyFacets(t *testing.T) {
	m := NewMaterializer(t.TempDir(), "keywords.txt", nil)
	path, err := m.Materialize("ljs57", "")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("size=%d", info.Size())
	}
}

func TestMaterializeRejectsPathFolders(t *testing.T) {
	m := NewMaterializer(t.TempDir(), "keywords.txt", nil)
	for _, folder := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := m.Materialize(folder, "Paper"); err == nil {
			t.Fatalf("folder %q accepted", folder)
		}
	}
}

func TestMaterializeTable(t *testing.T) {
	root := t.TempDir()
	m := NewMaterializer(root, "keywords.txt", nil)

	table := internal.Table{
		Header: []string{internal.ColumnBibID, internal.ColumnFacets, internal.ColumnFolder},
		Rows: [][]string{
			{"1", "Paper, Arabic", "ljs101"},
			{"2", "Parchment", ""},
			{"3", "Legal, , Italian, ,", "mscoll764_2222"},
			{"4", "Paper"},
		},
	}
	result, err := m.MaterializeTable(table)
	if err != nil {
		t.Fatal(err)
	}
	if result.Written != 2 || result.Skipped != 2 {
		t.Fatalf("result=%+v", result)
	}

	b, err := os.ReadFile(filepath.Join(root, "mscoll764_2222", "keywords.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Legal\n\nItalian\n" {
		t.Fatalf("content=%q", string(b))
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 2 {
		t.Fatalf("entries=%d", len(entries))
	}
}

func TestMaterializeTableRequiresColumns(t *testing.T) {
	m := NewMaterializer(t.TempDir(), "keywords.txt", nil)
	if _, err := m.MaterializeTable(internal.Table{Header: []string{internal.ColumnFolder}}); err == nil {
		t.Fatal("expected error")
	}
}
