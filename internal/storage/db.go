package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mssprep/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS shelfmarks (
  bibId TEXT PRIMARY KEY,
  shelfmark TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  stage TEXT NOT NULL,
  input TEXT NOT NULL,
  status TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS diagnostics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  kind TEXT NOT NULL,
  folder TEXT,
  bibId TEXT,
  bibIdsJson TEXT NOT NULL,
  message TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(runId);

CREATE TABLE IF NOT EXISTS folder_assignments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  bibId TEXT NOT NULL,
  shelfmark TEXT NOT NULL,
  folder TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_folder_assignments_folder ON folder_assignments(folder);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// Lookup, Store and Flush make DB usable as a shelfmark cache. Writes go
// straight to the table so Flush has nothing left to do.
func (d *DB) Lookup(bibid string) (string, bool, error) {
	var value string
	err := d.conn.QueryRow(`SELECT shelfmark FROM shelfmarks WHERE bibId = ?`, bibid).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *DB) Store(bibid, shelfmark string) error {
	_, err := d.conn.Exec(`
INSERT INTO shelfmarks (bibId, shelfmark) VALUES (?, ?)
ON CONFLICT(bibId) DO UPDATE SET shelfmark = excluded.shelfmark, updatedAt = CURRENT_TIMESTAMP
`, bibid, shelfmark)
	return err
}

func (d *DB) Flush() error { return nil }

// ImportShelfmarks copies entries into the shelfmarks table in one
// transaction.
func (d *DB) ImportShelfmarks(entries map[string]string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO shelfmarks (bibId, shelfmark) VALUES (?, ?)
ON CONFLICT(bibId) DO UPDATE SET shelfmark = excluded.shelfmark, updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for bibid, shelfmark := range entries {
		if _, err := stmt.Exec(bibid, shelfmark); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertRun(traceID, stage, input, status string, counts map[string]int) (int64, error) {
	countsJSON, _ := json.Marshal(counts)
	result, err := d.conn.Exec(`INSERT INTO runs (traceId, stage, input, status, countsJson) VALUES (?, ?, ?, ?, ?)`,
		traceID, stage, input, status, string(countsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertDiagnostics(runID int64, diags []internal.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO diagnostics (runId, kind, folder, bibId, bibIdsJson, message) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, diag := range diags {
		bibIDsJSON, _ := json.Marshal(diag.BibIDs)
		if _, err := stmt.Exec(runID, string(diag.Kind), diag.Folder, diag.BibID, string(bibIDsJSON), diag.Message); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertFolderAssignments(runID int64, assignments []internal.FolderAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO folder_assignments (runId, bibId, shelfmark, folder) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.Exec(runID, a.BibID, a.Shelfmark, a.Folder); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, stage, input, status, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var run internal.RunRecord
		var countsJSON string
		if err := rows.Scan(&run.ID, &run.TraceID, &run.Stage, &run.Input, &run.Status, &countsJSON, &run.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
		out = append(out, run)
	}
	return out, rows.Err()
}

func (d *DB) ListDiagnostics(runID int64) ([]internal.Diagnostic, error) {
	rows, err := d.conn.Query(`
SELECT kind, folder, bibId, bibIdsJson, message
FROM diagnostics WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Diagnostic
	for rows.Next() {
		var diag internal.Diagnostic
		var kind, bibIDsJSON string
		if err := rows.Scan(&kind, &diag.Folder, &diag.BibID, &bibIDsJSON, &diag.Message); err != nil {
			return nil, err
		}
		diag.Kind = internal.DiagnosticKind(kind)
		_ = json.Unmarshal([]byte(bibIDsJSON), &diag.BibIDs)
		out = append(out, diag)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
