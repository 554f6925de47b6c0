package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"nemostore/models"
)

// LegacyRegion is the backfill value for rows collected before the region
// column existed. Those early runs only ever covered Itaewon.
const LegacyRegion = "itaewon"

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the listings database and brings the schema up to
// date. Any schema failure here is fatal to the run: nothing may fetch or
// write before the table and the region column exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := store.ensureRegionColumn(); err != nil {
		db.Close()
		return nil, fmt.Errorf("region column: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		region TEXT,
		article_type INTEGER,
		building_management_serial_number TEXT,
		number INTEGER,
		preview_photo_url TEXT,
		small_photo_urls TEXT,
		origin_photo_urls TEXT,
		business_large_code INTEGER,
		business_large_code_name TEXT,
		business_middle_code INTEGER,
		business_middle_code_name TEXT,
		price_type INTEGER,
		price_type_name TEXT,
		deposit INTEGER,
		monthly_rent INTEGER,
		premium INTEGER,
		sale INTEGER,
		maintenance_fee INTEGER,
		floor INTEGER,
		ground_floor BOOLEAN,
		size REAL,
		title TEXT,
		first_deposit INTEGER,
		first_monthly_rent INTEGER,
		first_premium INTEGER,
		near_subway_station TEXT,
		view_count INTEGER,
		favorite_count INTEGER,
		is_move_in_date BOOLEAN,
		created_date_utc TEXT,
		edited_date_utc TEXT,
		state INTEGER,
		area_price INTEGER
	);

	CREATE TABLE IF NOT EXISTS collection_runs (
		id TEXT PRIMARY KEY,
		region TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages_fetched INTEGER DEFAULT 0,
		listings_written INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_listings_region ON listings(region);
	CREATE INDEX IF NOT EXISTS idx_listings_business ON listings(business_middle_code_name);
	CREATE INDEX IF NOT EXISTS idx_runs_region ON collection_runs(region, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ensureRegionColumn performs the one additive migration this schema has
// ever needed: databases created before regions were tagged lack the region
// column. It is added in place and pre-existing rows are backfilled with
// LegacyRegion. Idempotent across restarts.
func (s *SQLiteStore) ensureRegionColumn() error {
	rows, err := s.db.Query(`PRAGMA table_info(listings)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	hasRegion := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "region" {
			hasRegion = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if hasRegion {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE listings ADD COLUMN region TEXT`); err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE listings SET region = ? WHERE region IS NULL`, LegacyRegion)
	return err
}

// Begin opens the transaction for one page of writes. The orchestrator
// commits it before fetching the next page so partial progress survives a
// mid-run crash.
func (s *SQLiteStore) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

const listingColumns = `
	id, region, article_type, building_management_serial_number, number,
	preview_photo_url, small_photo_urls, origin_photo_urls,
	business_large_code, business_large_code_name,
	business_middle_code, business_middle_code_name,
	price_type, price_type_name,
	deposit, monthly_rent, premium, sale, maintenance_fee,
	floor, ground_floor, size, title,
	first_deposit, first_monthly_rent, first_premium,
	near_subway_station, view_count, favorite_count, is_move_in_date,
	created_date_utc, edited_date_utc, state, area_price`

// UpsertListing writes one row keyed by listing id. A re-fetch of a known id
// fully overwrites the previous row, region tag included.
func (s *SQLiteStore) UpsertListing(tx *sql.Tx, l *models.Listing) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Region, l.ArticleType, l.BuildingManagementSerialNumber, l.Number,
		l.PreviewPhotoURL, l.SmallPhotoURLs, l.OriginPhotoURLs,
		l.BusinessLargeCode, l.BusinessLargeCodeName,
		l.BusinessMiddleCode, l.BusinessMiddleCodeName,
		l.PriceType, l.PriceTypeName,
		l.Deposit, l.MonthlyRent, l.Premium, l.Sale, l.MaintenanceFee,
		l.Floor, l.GroundFloor, l.Size, l.Title,
		l.FirstDeposit, l.FirstMonthlyRent, l.FirstPremium,
		l.NearSubwayStation, l.ViewCount, l.FavoriteCount, l.IsMoveInDate,
		l.CreatedDateUTC, l.EditedDateUTC, l.State, l.AreaPrice)
	return err
}

func scanListing(scan func(dest ...any) error) (*models.Listing, error) {
	var l models.Listing
	var region sql.NullString
	err := scan(
		&l.ID, &region, &l.ArticleType, &l.BuildingManagementSerialNumber, &l.Number,
		&l.PreviewPhotoURL, &l.SmallPhotoURLs, &l.OriginPhotoURLs,
		&l.BusinessLargeCode, &l.BusinessLargeCodeName,
		&l.BusinessMiddleCode, &l.BusinessMiddleCodeName,
		&l.PriceType, &l.PriceTypeName,
		&l.Deposit, &l.MonthlyRent, &l.Premium, &l.Sale, &l.MaintenanceFee,
		&l.Floor, &l.GroundFloor, &l.Size, &l.Title,
		&l.FirstDeposit, &l.FirstMonthlyRent, &l.FirstPremium,
		&l.NearSubwayStation, &l.ViewCount, &l.FavoriteCount, &l.IsMoveInDate,
		&l.CreatedDateUTC, &l.EditedDateUTC, &l.State, &l.AreaPrice)
	if err != nil {
		return nil, err
	}
	l.Region = region.String
	return &l, nil
}

func (s *SQLiteStore) GetListing(id string) (*models.Listing, error) {
	row := s.db.QueryRow(`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// LoadAllListings reads the full table. The analytics engine calls this on
// every load; nothing is cached here.
func (s *SQLiteStore) LoadAllListings() ([]models.Listing, error) {
	rows, err := s.db.Query(`SELECT ` + listingColumns + ` FROM listings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (s *SQLiteStore) CountListings() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

func (s *SQLiteStore) CountByRegion() ([]RegionCount, error) {
	rows, err := s.db.Query(`
		SELECT COALESCE(region, ''), COUNT(*) FROM listings
		GROUP BY region ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []RegionCount
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, rc)
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) CreateRun(run *models.CollectionRun) error {
	_, err := s.db.Exec(`
		INSERT INTO collection_runs (id, region, started_at, status, pages_fetched, listings_written, error)
		VALUES (?, ?, ?, ?, 0, 0, '')`,
		run.ID.String(), run.Region, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) FinishRun(run *models.CollectionRun) error {
	_, err := s.db.Exec(`
		UPDATE collection_runs
		SET finished_at = ?, status = ?, pages_fetched = ?, listings_written = ?, error = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.PagesFetched, run.ListingsWritten, run.Error, run.ID.String())
	return err
}

func (s *SQLiteStore) RecentRuns(limit int) ([]models.CollectionRun, error) {
	rows, err := s.db.Query(`
		SELECT id, region, started_at, finished_at, status, pages_fetched, listings_written, error
		FROM collection_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.CollectionRun
	for rows.Next() {
		var run models.CollectionRun
		var id string
		var errText sql.NullString
		if err := rows.Scan(&id, &run.Region, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.PagesFetched, &run.ListingsWritten, &errText); err != nil {
			return nil, err
		}
		if parsed, err := uuid.Parse(id); err == nil {
			run.ID = parsed
		}
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
