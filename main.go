package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"nemostore/analytics"
	"nemostore/config"
	"nemostore/httputil"
	"nemostore/logging"
	"nemostore/scheduler"
	"nemostore/scraper"
	"nemostore/server"
	"nemostore/storage"
)

var (
	collectNow = flag.Bool("collect", false, "Collect all configured regions once and exit")
	verify     = flag.Bool("verify", false, "Print store contents summary and exit")
	export     = flag.Bool("export", false, "Export listings to the Postgres warehouse and exit")
	serve      = flag.Bool("serve", false, "Serve the analytics API")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("nemostore.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded %d region configs", len(cfg.Regions))
	for _, region := range cfg.Regions {
		log.Printf("  - %s (max %d pages)", region.Name, region.MaxPages)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// Schema failures are fatal: nothing runs against a store that could not
	// migrate.
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	log.Printf("Store: %s", cfg.DBPath)

	ctx := context.Background()

	switch {
	case *verify:
		runVerify(store)
		return
	case *export:
		runExport(ctx, cfg, store)
		return
	case *serve:
		srv := server.New(store)
		log.Printf("Analytics API listening on %s", cfg.APIAddr)
		if err := srv.Run(cfg.APIAddr); err != nil {
			log.Fatalf("API server: %v", err)
		}
		return
	}

	client := httputil.NewClient(cfg.HTTPTimeout)
	handler := scraper.NewAPIHandler(cfg.BaseURL, client)
	orchestrator := scraper.NewOrchestrator(cfg, store, handler)

	if *collectNow {
		// Region failures are logged per region; the process still exits 0
		// after attempting every region.
		orchestrator.RunAll(ctx)
		log.Println("Collection complete")
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, orchestrator)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
}

func runVerify(store *storage.SQLiteStore) {
	total, err := store.CountListings()
	if err != nil {
		log.Fatalf("Count failed: %v", err)
	}
	fmt.Printf("Total listings: %d\n", total)

	counts, err := store.CountByRegion()
	if err != nil {
		log.Fatalf("Region counts failed: %v", err)
	}
	for _, rc := range counts {
		fmt.Printf("  %-20s %d\n", rc.Region, rc.Count)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		log.Fatalf("Recent runs failed: %v", err)
	}
	if len(runs) > 0 {
		fmt.Println("Recent runs:")
		for _, run := range runs {
			line := fmt.Sprintf("  %s  %-12s %-10s pages=%d written=%d",
				run.StartedAt.Format("2006-01-02 15:04"), run.Region, run.Status,
				run.PagesFetched, run.ListingsWritten)
			if run.Error != "" {
				line += "  error: " + run.Error
			}
			fmt.Println(line)
		}
	}

	rows, err := analytics.LoadCanonical(store)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	summary := analytics.Summarize(rows)
	if summary.Count > 0 {
		fmt.Printf("Avg rent %s, deposit %s, premium %s, monthly fixed %s, initial capital %s\n",
			summary.AvgMonthlyRent, summary.AvgDeposit, summary.AvgPremium,
			summary.AvgMonthlyFixedCost, summary.AvgInitialInvestment)
	}
}

func runExport(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore) {
	if cfg.WarehouseDBURL == "" {
		log.Fatal("WAREHOUSE_DB_URL is not set")
	}

	warehouse, err := storage.NewWarehouseStore(ctx, cfg.WarehouseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to warehouse: %v", err)
	}
	defer warehouse.Close()

	listings, err := store.LoadAllListings()
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	sent, err := warehouse.ExportListings(ctx, listings)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Exported %d listings", sent)
}
