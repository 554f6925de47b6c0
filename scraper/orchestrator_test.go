package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"nemostore/config"
	"nemostore/models"
	"nemostore/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func pageBody(region string, page, count int) string {
	body := `{"items": [`
	for i := 0; i < count; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id": "%s-p%d-%d", "monthlyRent": 500, "deposit": 50000}`, region, page, i)
	}
	return body + `]}`
}

func newOrchestrator(t *testing.T, srvURL string, regions ...*config.RegionConfig) (*Orchestrator, *storage.SQLiteStore) {
	t.Helper()
	store := newTestStore(t)
	cfg := &config.Config{
		BaseURL:    srvURL,
		FetchDelay: time.Millisecond,
		Regions:    regions,
	}
	handler := NewAPIHandler(srvURL, &http.Client{Timeout: 5 * time.Second})
	return NewOrchestrator(cfg, store, handler), store
}

func TestCollectRegion_StopsOnEmptyPage(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("PageIndex"))
		if page >= 3 {
			w.Write([]byte(`{"items": []}`))
			return
		}
		w.Write([]byte(pageBody("a", page, 2)))
	}))
	defer srv.Close()

	region := &config.RegionConfig{Name: "a", Zoom: 16, MaxPages: 10}
	orchestrator, store := newOrchestrator(t, srv.URL, region)

	run := orchestrator.CollectRegion(context.Background(), region)

	if requests != 4 {
		t.Fatalf("expected 4 requests (pages 0-3), got %d", requests)
	}
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.ListingsWritten != 6 {
		t.Fatalf("expected 6 listings written, got %d", run.ListingsWritten)
	}

	count, err := store.CountListings()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 rows persisted, got %d", count)
	}
}

func TestCollectRegion_StopsAtPageCap(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("PageIndex"))
		w.Write([]byte(pageBody("a", page, 1)))
	}))
	defer srv.Close()

	region := &config.RegionConfig{Name: "a", Zoom: 16, MaxPages: 5}
	orchestrator, _ := newOrchestrator(t, srv.URL, region)

	run := orchestrator.CollectRegion(context.Background(), region)

	if requests != 5 {
		t.Fatalf("expected exactly 5 requests, got %d", requests)
	}
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.ListingsWritten != 5 {
		t.Fatalf("expected 5 listings written, got %d", run.ListingsWritten)
	}
}

func TestRunAll_RegionIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("PageIndex"))
		// Region "a" sits in a different bounding box than "b".
		regionName := "b"
		if r.URL.Query().Get("Zoom") == "15" {
			regionName = "a"
		}

		if regionName == "a" && page == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if page >= 3 {
			w.Write([]byte(`{"items": []}`))
			return
		}
		w.Write([]byte(pageBody(regionName, page, 2)))
	}))
	defer srv.Close()

	regionA := &config.RegionConfig{Name: "a", Zoom: 15, MaxPages: 10}
	regionB := &config.RegionConfig{Name: "b", Zoom: 16, MaxPages: 10}
	orchestrator, store := newOrchestrator(t, srv.URL, regionA, regionB)

	orchestrator.RunAll(context.Background())

	// Region a keeps pages 0-1 (4 rows), region b collects fully (6 rows).
	counts, err := store.CountByRegion()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	byRegion := map[string]int{}
	for _, rc := range counts {
		byRegion[rc.Region] = rc.Count
	}
	if byRegion["a"] != 4 {
		t.Fatalf("expected region a to keep 4 rows, got %d", byRegion["a"])
	}
	if byRegion["b"] != 6 {
		t.Fatalf("expected region b to have 6 rows, got %d", byRegion["b"])
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	statuses := map[string]models.RunStatus{}
	for _, run := range runs {
		statuses[run.Region] = run.Status
	}
	if statuses["a"] != models.RunStatusFailed {
		t.Fatalf("expected region a run failed, got %s", statuses["a"])
	}
	if statuses["b"] != models.RunStatusCompleted {
		t.Fatalf("expected region b run completed, got %s", statuses["b"])
	}
}

func TestCollectRegion_RecollectIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("PageIndex"))
		if page >= 1 {
			w.Write([]byte(`{"items": []}`))
			return
		}
		// Same ids every time regardless of region.
		w.Write([]byte(`{"items": [{"id": "fixed-1", "monthlyRent": 500}, {"id": "fixed-2", "monthlyRent": 700}]}`))
	}))
	defer srv.Close()

	regionA := &config.RegionConfig{Name: "a", Zoom: 16, MaxPages: 5}
	regionB := &config.RegionConfig{Name: "b", Zoom: 16, MaxPages: 5}
	orchestrator, store := newOrchestrator(t, srv.URL, regionA, regionB)

	orchestrator.CollectRegion(context.Background(), regionA)
	orchestrator.CollectRegion(context.Background(), regionB)

	count, err := store.CountListings()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows after re-collection, got %d", count)
	}

	// Last writer wins, region tag included.
	l, err := store.GetListing("fixed-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l == nil || l.Region != "b" {
		t.Fatalf("expected region b to own the row, got %+v", l)
	}
}

func TestCollectRegion_SkipsRecordsWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("PageIndex"))
		if page >= 1 {
			w.Write([]byte(`{"items": []}`))
			return
		}
		w.Write([]byte(`{"items": [{"id": "real-1"}, {"monthlyRent": 300}]}`))
	}))
	defer srv.Close()

	region := &config.RegionConfig{Name: "a", Zoom: 16, MaxPages: 5}
	orchestrator, store := newOrchestrator(t, srv.URL, region)

	run := orchestrator.CollectRegion(context.Background(), region)

	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.ListingsWritten != 1 {
		t.Fatalf("expected 1 listing written, got %d", run.ListingsWritten)
	}
	count, _ := store.CountListings()
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}
