package models

import "encoding/json"

// ListingFromRaw maps one API record into the persisted row shape, tagging
// it with the region of the collecting run. Photo URL lists are stored as
// JSON text. Returns false when the record has no id; such a record cannot
// be keyed and is skipped by the caller.
func ListingFromRaw(raw *RawListing, region string) (*Listing, bool) {
	if raw.ID == nil || *raw.ID == "" {
		return nil, false
	}

	l := &Listing{
		ID:                             *raw.ID,
		Region:                         region,
		ArticleType:                    raw.ArticleType,
		BuildingManagementSerialNumber: raw.BuildingManagementSerialNumber,
		Number:                         raw.Number,
		PreviewPhotoURL:                raw.PreviewPhotoURL,
		SmallPhotoURLs:                 encodeURLList(raw.SmallPhotoURLs),
		OriginPhotoURLs:                encodeURLList(raw.OriginPhotoURLs),
		BusinessLargeCode:              raw.BusinessLargeCode,
		BusinessLargeCodeName:          raw.BusinessLargeCodeName,
		BusinessMiddleCode:             raw.BusinessMiddleCode,
		BusinessMiddleCodeName:         raw.BusinessMiddleCodeName,
		PriceType:                      raw.PriceType,
		PriceTypeName:                  raw.PriceTypeName,
		Deposit:                        raw.Deposit,
		MonthlyRent:                    raw.MonthlyRent,
		Premium:                        raw.Premium,
		Sale:                           raw.Sale,
		MaintenanceFee:                 raw.MaintenanceFee,
		Floor:                          raw.Floor,
		GroundFloor:                    raw.GroundFloor,
		Size:                           raw.Size,
		Title:                          raw.Title,
		FirstDeposit:                   raw.FirstDeposit,
		FirstMonthlyRent:               raw.FirstMonthlyRent,
		FirstPremium:                   raw.FirstPremium,
		NearSubwayStation:              raw.NearSubwayStation,
		ViewCount:                      raw.ViewCount,
		FavoriteCount:                  raw.FavoriteCount,
		IsMoveInDate:                   raw.IsMoveInDate,
		CreatedDateUTC:                 raw.CreatedDateUTC,
		EditedDateUTC:                  raw.EditedDateUTC,
		State:                          raw.State,
		AreaPrice:                      raw.AreaPrice,
	}

	return l, true
}

func encodeURLList(urls []string) *string {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
