package analytics

import (
	"nemostore/models"
	"nemostore/storage"
)

// WonPerStoredUnit converts a stored monetary value to won. The search API
// persists amounts in units of 1,000 won (a stored 500 is a ₩500,000 rent).
// This was inferred from live data, not documentation; all analysis applies
// the conversion exactly once, here, and never mutates stored rows.
const WonPerStoredUnit = 1000

// MonthsPerYear for annualizing monthly fixed cost.
const MonthsPerYear = 12

// Derive converts one stored row to canonical won amounts and computes the
// investment metrics. Per-area metrics are left nil when the listing has no
// positive size; every other metric still computes (missing monetary fields
// count as zero).
func Derive(l models.Listing) models.DerivedListing {
	d := models.DerivedListing{Listing: l}

	d.DepositWon = toWon(l.Deposit)
	d.MonthlyRentWon = toWon(l.MonthlyRent)
	d.PremiumWon = toWon(l.Premium)
	d.SaleWon = toWon(l.Sale)
	d.MaintenanceFeeWon = toWon(l.MaintenanceFee)

	d.MonthlyFixedCostWon = d.MonthlyRentWon + d.MaintenanceFeeWon
	d.InitialInvestmentWon = d.DepositWon + d.PremiumWon
	d.AnnualRentCostWon = d.MonthlyFixedCostWon * MonthsPerYear

	if l.Size != nil && *l.Size > 0 {
		rentPerM2 := float64(d.MonthlyRentWon) / *l.Size
		depositPerM2 := float64(d.DepositWon) / *l.Size
		d.RentPerM2Won = &rentPerM2
		d.DepositPerM2Won = &depositPerM2
	}

	return d
}

func toWon(stored *int64) int64 {
	if stored == nil {
		return 0
	}
	return *stored * WonPerStoredUnit
}

// LoadCanonical reads the full listings table and derives metrics for every
// row. Pure read path: fresh on every call, no caching, no writes.
func LoadCanonical(store *storage.SQLiteStore) ([]models.DerivedListing, error) {
	listings, err := store.LoadAllListings()
	if err != nil {
		return nil, err
	}

	derived := make([]models.DerivedListing, 0, len(listings))
	for _, l := range listings {
		derived = append(derived, Derive(l))
	}
	return derived, nil
}

// Filter narrows derived rows by region tag and business category name.
// Empty arguments match everything.
func Filter(rows []models.DerivedListing, region, category string) []models.DerivedListing {
	if region == "" && category == "" {
		return rows
	}

	var out []models.DerivedListing
	for _, r := range rows {
		if region != "" && r.Region != region {
			continue
		}
		if category != "" {
			if r.BusinessMiddleCodeName == nil || *r.BusinessMiddleCodeName != category {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Summary aggregates the KPI averages the dashboard's metric cards show.
// Per-area averages only consider rows where the metric is defined; when no
// row defines it the average itself is absent.
type Summary struct {
	Count                   int      `json:"count"`
	AvgMonthlyRentWon       float64  `json:"avg_monthly_rent_won"`
	AvgDepositWon           float64  `json:"avg_deposit_won"`
	AvgPremiumWon           float64  `json:"avg_premium_won"`
	AvgMonthlyFixedCostWon  float64  `json:"avg_monthly_fixed_cost_won"`
	AvgInitialInvestmentWon float64  `json:"avg_initial_investment_won"`
	AvgRentPerM2Won         *float64 `json:"avg_rent_per_m2_won"`
	AvgDepositPerM2Won      *float64 `json:"avg_deposit_per_m2_won"`

	AvgMonthlyRent       string `json:"avg_monthly_rent"`
	AvgDeposit           string `json:"avg_deposit"`
	AvgPremium           string `json:"avg_premium"`
	AvgMonthlyFixedCost  string `json:"avg_monthly_fixed_cost"`
	AvgInitialInvestment string `json:"avg_initial_investment"`
}

func Summarize(rows []models.DerivedListing) Summary {
	s := Summary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var rent, deposit, premium, fixed, invest int64
	var rentPerM2, depositPerM2 float64
	perM2Count := 0

	for _, r := range rows {
		rent += r.MonthlyRentWon
		deposit += r.DepositWon
		premium += r.PremiumWon
		fixed += r.MonthlyFixedCostWon
		invest += r.InitialInvestmentWon
		if r.RentPerM2Won != nil && r.DepositPerM2Won != nil {
			rentPerM2 += *r.RentPerM2Won
			depositPerM2 += *r.DepositPerM2Won
			perM2Count++
		}
	}

	n := float64(len(rows))
	s.AvgMonthlyRentWon = float64(rent) / n
	s.AvgDepositWon = float64(deposit) / n
	s.AvgPremiumWon = float64(premium) / n
	s.AvgMonthlyFixedCostWon = float64(fixed) / n
	s.AvgInitialInvestmentWon = float64(invest) / n

	if perM2Count > 0 {
		avgRent := rentPerM2 / float64(perM2Count)
		avgDeposit := depositPerM2 / float64(perM2Count)
		s.AvgRentPerM2Won = &avgRent
		s.AvgDepositPerM2Won = &avgDeposit
	}

	s.AvgMonthlyRent = FormatManWon(int64(s.AvgMonthlyRentWon))
	s.AvgDeposit = FormatWon(int64(s.AvgDepositWon))
	s.AvgPremium = FormatWon(int64(s.AvgPremiumWon))
	s.AvgMonthlyFixedCost = FormatManWon(int64(s.AvgMonthlyFixedCostWon))
	s.AvgInitialInvestment = FormatWon(int64(s.AvgInitialInvestmentWon))

	return s
}
