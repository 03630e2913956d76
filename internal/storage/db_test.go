package storage

import (
	"path/filepath"
	"testing"

	"mssprep/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestShelfmarkCacheTable(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := db.Lookup("9968529323503681"); err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if err := db.Store("9968529323503681", "CAJS Rar Ms 125"); err != nil {
		t.Fatal(err)
	}
	if err := db.Store("9968529323503681", "CAJS Rar Ms 125a"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := db.Lookup("9968529323503681")
	if err != nil || !ok || got != "CAJS Rar Ms 125a" {
		t.Fatalf("got=%q ok=%v err=%v", got, ok, err)
	}

	if err := db.ImportShelfmarks(map[string]string{"1": "LJS 101", "2": "LJS 102"}); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := db.Lookup("2"); !ok || got != "LJS 102" {
		t.Fatalf("imported=%q ok=%v", got, ok)
	}
	if err := db.Flush(); err != nil {
		t.Fatal(err)
	}
}

func TestRunJournal(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.InsertRun("abc123", "folders", "in.csv", "ok", map[string]int{"read": 4, "selected": 2})
	if err != nil {
		t.Fatal(err)
	}
	diags := []internal.Diagnostic{
		{Kind: internal.DiagDuplicateFolder, Folder: "mscoll764", BibID: "2222", BibIDs: []string{"1111"}, Message: "duplicate folder"},
		{Kind: internal.DiagSharedFolder, Folder: "mscoll764", BibIDs: []string{"1111", "2222"}, Message: "1111|2222"},
	}
	if err := db.InsertDiagnostics(runID, diags); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertFolderAssignments(runID, []internal.FolderAssignment{
		{BibID: "1111", Shelfmark: "Ms. Coll. 764", Folder: "mscoll764"},
		{BibID: "2222", Shelfmark: "Ms. Coll. 764", Folder: "mscoll764_2222"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertRun("def456", "keywords", "folders_keywords.csv", "ok", map[string]int{"written": 2}); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Stage != "keywords" || runs[1].Counts["selected"] != 2 {
		t.Fatalf("runs=%+v", runs)
	}

	stored, err := db.ListDiagnostics(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("len=%d", len(stored))
	}
	if stored[0].Kind != internal.DiagDuplicateFolder || stored[0].BibIDs[0] != "1111" {
		t.Fatalf("first=%+v", stored[0])
	}
	if stored[1].Message != "1111|2222" || len(stored[1].BibIDs) != 2 {
		t.Fatalf("second=%+v", stored[1])
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)
	if v, err := db.GetMetadata("cache.last_warm"); err != nil || v != nil {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if err := db.SetMetadata("cache.last_warm", "2026-10-14T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("cache.last_warm")
	if err != nil || v == nil || *v != "2026-10-14T00:00:00Z" {
		t.Fatalf("v=%v err=%v", v, err)
	}
}
