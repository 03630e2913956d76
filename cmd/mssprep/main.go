package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mssprep/internal/catalog"
	"mssprep/internal/config"
	"mssprep/internal/logging"
	"mssprep/internal/pipeline"
	"mssprep/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &app{cfg: cfg, logger: logger, db: db}

	cmd := os.Args[1]
	switch cmd {
	case "folders":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output csv path (default stdout)")
		_ = fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			must(fmt.Errorf("folders takes exactly one input path"))
		}
		must(app.folders(ctx, fs.Arg(0), *out))
	case "keywords":
		if len(os.Args) > 2 {
			must(fmt.Errorf("keywords takes no arguments; set KEYWORDS_SOURCE_CSV and KEYWORDS_OUTPUT_DIR"))
		}
		must(app.keywords())
	case "cache:warm":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		_ = fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			must(fmt.Errorf("cache:warm takes exactly one input path"))
		}
		must(app.warm(ctx, fs.Arg(0)))
	case "cache:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		from := fs.String("from", cfg.ShelfmarkCachePath, "yaml cache file to import")
		_ = fs.Parse(os.Args[2:])
		cache, err := catalog.LoadFileCache(*from)
		must(err)
		must(db.ImportShelfmarks(cache.Entries()))
		fmt.Fprintf(os.Stderr, "imported %d shelfmarks from %s\n", cache.Len(), *from)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "folders csv to export")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *out == "" {
			must(fmt.Errorf("--input and --out are required"))
		}
		table, err := pipeline.ReadTable(*input)
		must(err)
		must(pipeline.ExportTableToXLSX(table, *out))
		fmt.Fprintf(os.Stderr, "exported %d rows to %s\n", len(table.Rows), *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs")
		_ = fs.Parse(os.Args[2:])
		must(app.listRuns(*limit))
	case "runs:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "run id")
		_ = fs.Parse(os.Args[2:])
		if *id == 0 {
			must(fmt.Errorf("--id is required"))
		}
		must(app.showRun(*id))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: mssprep <command>")
	fmt.Println("commands:")
	fmt.Println("  folders [--out=folders.csv] <input.csv|input.xlsx>")
	fmt.Println("  keywords")
	fmt.Println("  cache:warm <input.csv|input.xlsx>")
	fmt.Println("  cache:import [--from=shelfmark_cache.yml]")
	fmt.Println("  export:xlsx --input=folders.csv --out=folders.xlsx")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  runs:show --id=1")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
