package models

// RawListing is one record of the store search API's "items" array, decoded
// exactly once at the ingestion boundary. Every field is optional: the API
// omits attributes freely, and a missing field must become NULL in the store
// rather than fail the page.
type RawListing struct {
	ID                             *string  `json:"id"`
	ArticleType                    *int64   `json:"articleType"`
	BuildingManagementSerialNumber *string  `json:"buildingManagementSerialNumber"`
	Number                         *int64   `json:"number"`
	PreviewPhotoURL                *string  `json:"previewPhotoUrl"`
	SmallPhotoURLs                 []string `json:"smallPhotoUrls"`
	OriginPhotoURLs                []string `json:"originPhotoUrls"`
	BusinessLargeCode              *int64   `json:"businessLargeCode"`
	BusinessLargeCodeName          *string  `json:"businessLargeCodeName"`
	BusinessMiddleCode             *int64   `json:"businessMiddleCode"`
	BusinessMiddleCodeName         *string  `json:"businessMiddleCodeName"`
	PriceType                      *int64   `json:"priceType"`
	PriceTypeName                  *string  `json:"priceTypeName"`
	Deposit                        *int64   `json:"deposit"`
	MonthlyRent                    *int64   `json:"monthlyRent"`
	Premium                        *int64   `json:"premium"`
	Sale                           *int64   `json:"sale"`
	MaintenanceFee                 *int64   `json:"maintenanceFee"`
	Floor                          *int64   `json:"floor"`
	GroundFloor                    *bool    `json:"groundFloor"`
	Size                           *float64 `json:"size"`
	Title                          *string  `json:"title"`
	FirstDeposit                   *int64   `json:"firstDeposit"`
	FirstMonthlyRent               *int64   `json:"firstMonthlyRent"`
	FirstPremium                   *int64   `json:"firstPremium"`
	NearSubwayStation              *string  `json:"nearSubwayStation"`
	ViewCount                      *int64   `json:"viewCount"`
	FavoriteCount                  *int64   `json:"favoriteCount"`
	IsMoveInDate                   *bool    `json:"isMoveInDate"`
	CreatedDateUTC                 *string  `json:"createdDateUtc"`
	EditedDateUTC                  *string  `json:"editedDateUtc"`
	State                          *int64   `json:"state"`
	AreaPrice                      *int64   `json:"areaPrice"`
}

// Listing is the persisted row shape of the listings table. Monetary fields
// hold the API's stored unit (thousands of won); they are converted to won
// only on the read path, never in place. Region is assigned by the collection
// run that last wrote the row, not by the API.
type Listing struct {
	ID                             string   `json:"id" db:"id"`
	Region                         string   `json:"region" db:"region"`
	ArticleType                    *int64   `json:"article_type" db:"article_type"`
	BuildingManagementSerialNumber *string  `json:"building_management_serial_number" db:"building_management_serial_number"`
	Number                         *int64   `json:"number" db:"number"`
	PreviewPhotoURL                *string  `json:"preview_photo_url" db:"preview_photo_url"`
	SmallPhotoURLs                 *string  `json:"small_photo_urls" db:"small_photo_urls"`
	OriginPhotoURLs                *string  `json:"origin_photo_urls" db:"origin_photo_urls"`
	BusinessLargeCode              *int64   `json:"business_large_code" db:"business_large_code"`
	BusinessLargeCodeName          *string  `json:"business_large_code_name" db:"business_large_code_name"`
	BusinessMiddleCode             *int64   `json:"business_middle_code" db:"business_middle_code"`
	BusinessMiddleCodeName         *string  `json:"business_middle_code_name" db:"business_middle_code_name"`
	PriceType                      *int64   `json:"price_type" db:"price_type"`
	PriceTypeName                  *string  `json:"price_type_name" db:"price_type_name"`
	Deposit                        *int64   `json:"deposit" db:"deposit"`
	MonthlyRent                    *int64   `json:"monthly_rent" db:"monthly_rent"`
	Premium                        *int64   `json:"premium" db:"premium"`
	Sale                           *int64   `json:"sale" db:"sale"`
	MaintenanceFee                 *int64   `json:"maintenance_fee" db:"maintenance_fee"`
	Floor                          *int64   `json:"floor" db:"floor"`
	GroundFloor                    *bool    `json:"ground_floor" db:"ground_floor"`
	Size                           *float64 `json:"size" db:"size"`
	Title                          *string  `json:"title" db:"title"`
	FirstDeposit                   *int64   `json:"first_deposit" db:"first_deposit"`
	FirstMonthlyRent               *int64   `json:"first_monthly_rent" db:"first_monthly_rent"`
	FirstPremium                   *int64   `json:"first_premium" db:"first_premium"`
	NearSubwayStation              *string  `json:"near_subway_station" db:"near_subway_station"`
	ViewCount                      *int64   `json:"view_count" db:"view_count"`
	FavoriteCount                  *int64   `json:"favorite_count" db:"favorite_count"`
	IsMoveInDate                   *bool    `json:"is_move_in_date" db:"is_move_in_date"`
	CreatedDateUTC                 *string  `json:"created_date_utc" db:"created_date_utc"`
	EditedDateUTC                  *string  `json:"edited_date_utc" db:"edited_date_utc"`
	State                          *int64   `json:"state" db:"state"`
	AreaPrice                      *int64   `json:"area_price" db:"area_price"`
}

// DerivedListing extends a Listing with won-denominated monetary fields and
// the derived investment metrics. Computed fresh on every load, never
// persisted. Per-area metrics are nil when the listing has no usable size;
// they must reach the presentation layer as absent, not zero.
type DerivedListing struct {
	Listing

	DepositWon        int64 `json:"deposit_won"`
	MonthlyRentWon    int64 `json:"monthly_rent_won"`
	PremiumWon        int64 `json:"premium_won"`
	SaleWon           int64 `json:"sale_won"`
	MaintenanceFeeWon int64 `json:"maintenance_fee_won"`

	MonthlyFixedCostWon  int64    `json:"monthly_fixed_cost_won"`
	InitialInvestmentWon int64    `json:"initial_investment_won"`
	RentPerM2Won         *float64 `json:"rent_per_m2_won"`
	DepositPerM2Won      *float64 `json:"deposit_per_m2_won"`
	AnnualRentCostWon    int64    `json:"annual_rent_cost_won"`
}
