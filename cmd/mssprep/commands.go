package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"mssprep/internal/catalog"
	"mssprep/internal/config"
	"mssprep/internal/logging"
	"mssprep/internal/pipeline"
	"mssprep/internal/storage"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *storage.DB
}

func (a *app) openCache() (catalog.ShelfmarkCache, error) {
	switch a.cfg.ShelfmarkCacheBackend {
	case config.CacheBackendSQLite:
		return a.db, nil
	default:
		return catalog.LoadFileCache(a.cfg.ShelfmarkCachePath)
	}
}

// folders runs the normalization stage. The cache is flushed whether or not
// the run succeeds; output is only written on success.
func (a *app) folders(ctx context.Context, input, out string) error {
	table, err := pipeline.ReadTable(input)
	if err != nil {
		return err
	}

	cache, err := a.openCache()
	if err != nil {
		return err
	}
	resolver := catalog.NewResolver(cache, catalog.NewClient(a.cfg))
	svc := pipeline.NewFolderService(resolver, a.cfg.SkipBibIDs)

	result, procErr := svc.Process(ctx, table)
	flushErr := cache.Flush()
	if flushErr != nil {
		a.logger.Error("shelfmark cache flush failed", zap.String("path", a.cfg.ShelfmarkCachePath), zap.Error(flushErr))
	}

	logging.LogDiagnostics(a.logger, result.Diagnostics)

	counts := result.Counts()
	counts["fetched"] = resolver.Fetches()
	a.record(pipeline.RunEntry{
		Stage:       pipeline.StageFolders,
		Input:       input,
		Status:      status(procErr),
		Counts:      counts,
		Diagnostics: result.Diagnostics,
		Assignments: result.Assignments,
	})

	if procErr != nil {
		var fetchErr *catalog.FetchError
		if errors.As(procErr, &fetchErr) {
			a.logger.Error("error processing record", zap.String("bibid", fetchErr.BibID))
		}
		return procErr
	}
	if flushErr != nil {
		return flushErr
	}

	if out == "" {
		if err := pipeline.WriteCSV(os.Stdout, result.Output); err != nil {
			return err
		}
	} else if err := pipeline.WriteCSVFile(out, result.Output); err != nil {
		return err
	}

	a.logger.Info("folders done",
		zap.Int("read", result.Read),
		zap.Int("selected", len(result.Output.Rows)),
		zap.Int("fetched", resolver.Fetches()),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return nil
}

// keywords runs the materializer over the configured fixed paths.
func (a *app) keywords() error {
	var db *storage.DB
	if a.cfg.RecordRuns {
		db = a.db
	}
	_, err := pipeline.RunKeywordsStage(a.cfg, a.logger, db)
	return err
}

func (a *app) warm(ctx context.Context, input string) error {
	table, err := pipeline.ReadTable(input)
	if err != nil {
		return err
	}

	cache, err := a.openCache()
	if err != nil {
		return err
	}
	resolver := catalog.NewResolver(cache, catalog.NewClient(a.cfg))
	svc := catalog.NewSyncService(a.db, resolver)

	result, warmErr := svc.Warm(ctx, pipeline.ShelfmarkRequests(table, a.cfg.SkipBibIDs))
	flushErr := cache.Flush()

	a.record(pipeline.RunEntry{
		Stage:  pipeline.StageWarm,
		Input:  input,
		Status: status(warmErr),
		Counts: map[string]int{"requested": result.Requested, "fetched": result.Fetched},
	})

	if warmErr != nil {
		return warmErr
	}
	if flushErr != nil {
		return flushErr
	}
	a.logger.Info("cache warm done", zap.Int("requested", result.Requested), zap.Int("fetched", result.Fetched))
	return nil
}

func (a *app) listRuns(limit int) error {
	runs, err := a.db.ListRuns(limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\t%s\n", run.ID, run.CreatedAt, run.TraceID, run.Stage, run.Status, run.Input, formatCounts(run.Counts))
	}
	return nil
}

func (a *app) showRun(id int64) error {
	diags, err := a.db.ListDiagnostics(id)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Printf("%s\t%s\n", d.Kind, d.Message)
	}
	return nil
}

func (a *app) record(entry pipeline.RunEntry) {
	if !a.cfg.RecordRuns {
		return
	}
	trace, err := pipeline.RecordRun(a.db, entry)
	if err != nil {
		a.logger.Warn("run journal write failed", zap.Error(err))
		return
	}
	a.logger.Debug("run recorded", zap.String("trace", trace), zap.String("stage", entry.Stage))
}

func status(err error) string {
	if err != nil {
		return pipeline.RunFailed
	}
	return pipeline.RunOK
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
