package main

import (
	"fmt"
	"os"

	"mssprep/internal/config"
	"mssprep/internal/logging"
	"mssprep/internal/pipeline"
	"mssprep/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg.LogLevel)
	must(err)
	defer func() { _ = logger.Sync() }()

	var db *storage.DB
	if cfg.RecordRuns {
		db, err = storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
	}

	_, err = pipeline.RunKeywordsStage(cfg, logger, db)
	must(err)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
