package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nemostore/config"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func testRegion() *config.RegionConfig {
	return &config.RegionConfig{
		Name:     "shinsa",
		NELat:    37.52748221586911,
		NELng:    127.03858901633667,
		SWLat:    37.51838723436393,
		SWLng:    127.01654907038149,
		Zoom:     16,
		MaxPages: 5,
	}
}

func TestFetchPage_Basic(t *testing.T) {
	fixture := loadFixture(t, "search_list_page.json")

	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	}))
	defer srv.Close()

	handler := NewAPIHandler(srv.URL, &http.Client{Timeout: 5 * time.Second})
	items, err := handler.FetchPage(context.Background(), testRegion(), 3)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if gotQuery.Get("PageIndex") != "3" {
		t.Fatalf("expected PageIndex 3, got %q", gotQuery.Get("PageIndex"))
	}
	if gotQuery.Get("SortBy") != "29" {
		t.Fatalf("expected SortBy 29, got %q", gotQuery.Get("SortBy"))
	}
	if gotQuery.Get("CompletedOnly") != "false" {
		t.Fatalf("expected CompletedOnly false, got %q", gotQuery.Get("CompletedOnly"))
	}
	if gotQuery.Get("NELat") != "37.52748221586911" {
		t.Fatalf("unexpected NELat %q", gotQuery.Get("NELat"))
	}
	if gotQuery.Get("Zoom") != "16" {
		t.Fatalf("unexpected Zoom %q", gotQuery.Get("Zoom"))
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	full := items[0]
	if full.ID == nil || *full.ID != "a1b2c3d4" {
		t.Fatalf("unexpected id %v", full.ID)
	}
	if full.Deposit == nil || *full.Deposit != 50000 {
		t.Fatalf("unexpected deposit %v", full.Deposit)
	}
	if full.MonthlyRent == nil || *full.MonthlyRent != 500 {
		t.Fatalf("unexpected rent %v", full.MonthlyRent)
	}
	if full.Size == nil || *full.Size != 20.0 {
		t.Fatalf("unexpected size %v", full.Size)
	}
	if full.GroundFloor == nil || !*full.GroundFloor {
		t.Fatalf("expected groundFloor true")
	}
	if len(full.SmallPhotoURLs) != 2 || len(full.OriginPhotoURLs) != 1 {
		t.Fatalf("unexpected photo counts %d/%d", len(full.SmallPhotoURLs), len(full.OriginPhotoURLs))
	}
	if full.BusinessMiddleCodeName == nil || *full.BusinessMiddleCodeName != "카페" {
		t.Fatalf("unexpected category %v", full.BusinessMiddleCodeName)
	}

	// Sparse record: every absent field stays nil, never an error.
	sparse := items[1]
	if sparse.ID == nil || *sparse.ID != "e5f6a7b8" {
		t.Fatalf("unexpected sparse id %v", sparse.ID)
	}
	if sparse.Deposit != nil || sparse.Size != nil || sparse.GroundFloor != nil {
		t.Fatalf("expected absent fields to stay nil")
	}
	if sparse.SmallPhotoURLs != nil {
		t.Fatalf("expected absent photo list to stay nil")
	}
}

func TestFetchPage_EmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	handler := NewAPIHandler(srv.URL, srv.Client())
	items, err := handler.FetchPage(context.Background(), testRegion(), 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(items))
	}
}

func TestFetchPage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	handler := NewAPIHandler(srv.URL, srv.Client())
	if _, err := handler.FetchPage(context.Background(), testRegion(), 0); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestFetchPage_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	handler := NewAPIHandler(srv.URL, srv.Client())
	if _, err := handler.FetchPage(context.Background(), testRegion(), 0); err == nil {
		t.Fatal("expected error on non-JSON body")
	}
}
