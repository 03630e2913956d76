package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"mssprep/internal"
	"mssprep/internal/storage"
)

const (
	StageFolders  = "folders"
	StageKeywords = "keywords"
	StageWarm     = "cache:warm"

	RunOK     = "ok"
	RunFailed = "failed"
)

// RunEntry is what a stage reports to the run journal.
type RunEntry struct {
	Stage       string
	Input       string
	Status      string
	Counts      map[string]int
	Diagnostics []internal.Diagnostic
	Assignments []internal.FolderAssignment
}

// RecordRun stores entry and returns the generated trace id.
func RecordRun(db *storage.DB, entry RunEntry) (string, error) {
	trace := traceID()
	runID, err := db.InsertRun(trace, entry.Stage, entry.Input, entry.Status, entry.Counts)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	if err := db.InsertDiagnostics(runID, entry.Diagnostics); err != nil {
		return "", fmt.Errorf("record diagnostics: %w", err)
	}
	if err := db.InsertFolderAssignments(runID, entry.Assignments); err != nil {
		return "", fmt.Errorf("record folder assignments: %w", err)
	}
	return trace, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
