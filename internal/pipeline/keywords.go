package pipeline

import (
	"go.uber.org/zap"

	"mssprep/internal/config"
	"mssprep/internal/storage"
)

// RunKeywordsStage materializes KEYWORDS_SOURCE_CSV into KEYWORDS_OUTPUT_DIR.
// A nil db disables the run journal.
func RunKeywordsStage(cfg config.Config, logger *zap.Logger, db *storage.DB) (MaterializeResult, error) {
	table, err := ReadTable(cfg.KeywordsSourceCSV)
	if err != nil {
		return MaterializeResult{}, err
	}

	m := NewMaterializer(cfg.KeywordsOutputDir, cfg.KeywordsFileName, logger)
	result, runErr := m.MaterializeTable(table)

	if db != nil {
		status := RunOK
		if runErr != nil {
			status = RunFailed
		}
		if _, err := RecordRun(db, RunEntry{Stage: StageKeywords, Input: cfg.KeywordsSourceCSV, Status: status, Counts: result.Counts()}); err != nil {
			m.logger.Warn("run journal write failed", zap.Error(err))
		}
	}
	if runErr != nil {
		return result, runErr
	}

	m.logger.Info("keywords done",
		zap.String("root", cfg.KeywordsOutputDir),
		zap.Int("written", result.Written),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
