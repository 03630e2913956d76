package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mssprep/internal"
	"mssprep/internal/storage"
)

func TestWarmStopsAtFirstFailure(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fetcher := newStubFetcher(map[string]string{"1": "LJS 101", "3": "LJS 103"})
	fetcher.fail["2"] = true
	r := NewResolver(db, fetcher)
	svc := NewSyncService(db, r)

	requests := []internal.ShelfmarkRequest{{BibID: "1"}, {BibID: "2"}, {BibID: "3"}}
	result, err := svc.Warm(context.Background(), requests)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.BibID != "2" {
		t.Fatalf("want FetchError for 2, got %v", err)
	}
	if result.Requested != 3 || result.Fetched != 2 {
		t.Fatalf("result=%+v", result)
	}
	if got, ok, _ := db.Lookup("1"); !ok || got != "LJS 101" {
		t.Fatalf("bibid 1 not cached: %q %v", got, ok)
	}

	delete(fetcher.fail, "2")
	fetcher.values["2"] = "LJS 102"
	result, err = svc.Warm(context.Background(), requests)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 2 {
		t.Fatalf("second warm fetched=%d, want only the two uncached bibids", result.Fetched)
	}
	last, err := db.GetMetadata("cache.last_warm")
	if err != nil || last == nil {
		t.Fatalf("last_warm=%v err=%v", last, err)
	}
}
