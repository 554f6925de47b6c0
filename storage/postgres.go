package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"nemostore/models"
)

// WarehouseStore copies the normalized listings table into a Postgres
// warehouse for shared analysis. The SQLite file stays the source of truth;
// the export is a full upsert keyed by listing id, safe to re-run.
type WarehouseStore struct {
	pool *pgxpool.Pool
}

func NewWarehouseStore(ctx context.Context, connString string) (*WarehouseStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &WarehouseStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *WarehouseStore) Close() {
	s.pool.Close()
}

func (s *WarehouseStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id TEXT PRIMARY KEY,
			region TEXT,
			article_type BIGINT,
			building_management_serial_number TEXT,
			number BIGINT,
			preview_photo_url TEXT,
			small_photo_urls TEXT,
			origin_photo_urls TEXT,
			business_large_code BIGINT,
			business_large_code_name TEXT,
			business_middle_code BIGINT,
			business_middle_code_name TEXT,
			price_type BIGINT,
			price_type_name TEXT,
			deposit BIGINT,
			monthly_rent BIGINT,
			premium BIGINT,
			sale BIGINT,
			maintenance_fee BIGINT,
			floor BIGINT,
			ground_floor BOOLEAN,
			size DOUBLE PRECISION,
			title TEXT,
			first_deposit BIGINT,
			first_monthly_rent BIGINT,
			first_premium BIGINT,
			near_subway_station TEXT,
			view_count BIGINT,
			favorite_count BIGINT,
			is_move_in_date BOOLEAN,
			created_date_utc TEXT,
			edited_date_utc TEXT,
			state BIGINT,
			area_price BIGINT,
			exported_at TIMESTAMPTZ DEFAULT NOW()
		)`)
	return err
}

// ExportListings upserts the given rows in one batch. Returns the number of
// rows sent.
func (s *WarehouseStore) ExportListings(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO listings (
			id, region, article_type, building_management_serial_number, number,
			preview_photo_url, small_photo_urls, origin_photo_urls,
			business_large_code, business_large_code_name,
			business_middle_code, business_middle_code_name,
			price_type, price_type_name,
			deposit, monthly_rent, premium, sale, maintenance_fee,
			floor, ground_floor, size, title,
			first_deposit, first_monthly_rent, first_premium,
			near_subway_station, view_count, favorite_count, is_move_in_date,
			created_date_utc, edited_date_utc, state, area_price, exported_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			region = EXCLUDED.region,
			article_type = EXCLUDED.article_type,
			building_management_serial_number = EXCLUDED.building_management_serial_number,
			number = EXCLUDED.number,
			preview_photo_url = EXCLUDED.preview_photo_url,
			small_photo_urls = EXCLUDED.small_photo_urls,
			origin_photo_urls = EXCLUDED.origin_photo_urls,
			business_large_code = EXCLUDED.business_large_code,
			business_large_code_name = EXCLUDED.business_large_code_name,
			business_middle_code = EXCLUDED.business_middle_code,
			business_middle_code_name = EXCLUDED.business_middle_code_name,
			price_type = EXCLUDED.price_type,
			price_type_name = EXCLUDED.price_type_name,
			deposit = EXCLUDED.deposit,
			monthly_rent = EXCLUDED.monthly_rent,
			premium = EXCLUDED.premium,
			sale = EXCLUDED.sale,
			maintenance_fee = EXCLUDED.maintenance_fee,
			floor = EXCLUDED.floor,
			ground_floor = EXCLUDED.ground_floor,
			size = EXCLUDED.size,
			title = EXCLUDED.title,
			first_deposit = EXCLUDED.first_deposit,
			first_monthly_rent = EXCLUDED.first_monthly_rent,
			first_premium = EXCLUDED.first_premium,
			near_subway_station = EXCLUDED.near_subway_station,
			view_count = EXCLUDED.view_count,
			favorite_count = EXCLUDED.favorite_count,
			is_move_in_date = EXCLUDED.is_move_in_date,
			created_date_utc = EXCLUDED.created_date_utc,
			edited_date_utc = EXCLUDED.edited_date_utc,
			state = EXCLUDED.state,
			area_price = EXCLUDED.area_price,
			exported_at = NOW()`

	for i := range listings {
		l := &listings[i]
		batch.Queue(query,
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
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range listings {
		if _, err := results.Exec(); err != nil {
			return 0, err
		}
	}

	return len(listings), nil
}
