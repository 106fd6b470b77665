package domain

import (
	"errors"
	"time"
)

var (
	ErrPackageNotFound    = errors.New("trading package not found")
	ErrLockedFundNotFound = errors.New("locked fund not found")
	ErrAmountOutOfRange   = errors.New("amount outside package limits")
)

// TradingPackage is a fixed product definition; the catalogue lives in code,
// only the resulting positions are persisted.
type TradingPackage struct {
	ID           string
	Name         string
	Description  string
	DurationDays int
	ReturnRate   float64 // fraction of the locked amount, e.g. 0.18
	MinAmount    float64
	MaxAmount    float64
}

// LockedFund is a position in a trading package. CurrentReturn accrues
// linearly toward ExpectedReturn between StartDate and EndDate.
type LockedFund struct {
	ID             string
	Email          string
	PackageID      string
	PackageName    string
	Amount         float64
	ExpectedReturn float64
	CurrentReturn  float64
	StartDate      time.Time
	EndDate        time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TradingPackages is the fixed catalogue offered on the dashboard.
func TradingPackages() []TradingPackage {
	return []TradingPackage{
		{
			ID:           "starter",
			Name:         "Starter Package",
			Description:  "Entry-level trading package with conservative, steady returns.",
			DurationDays: 30,
			ReturnRate:   0.08,
			MinAmount:    100,
			MaxAmount:    5000,
		},
		{
			ID:           "growth",
			Name:         "Growth Package",
			Description:  "Balanced package combining managed risk with stronger returns.",
			DurationDays: 60,
			ReturnRate:   0.18,
			MinAmount:    1000,
			MaxAmount:    25000,
		},
		{
			ID:           "premium",
			Name:         "Premium Package",
			Description:  "High-yield trading package for experienced investors seeking maximum returns.",
			DurationDays: 90,
			ReturnRate:   0.32,
			MinAmount:    5000,
			MaxAmount:    100000,
		},
	}
}

// FindTradingPackage returns the catalogue entry with the given ID.
func FindTradingPackage(id string) (TradingPackage, error) {
	for _, p := range TradingPackages() {
		if p.ID == id {
			return p, nil
		}
	}
	return TradingPackage{}, ErrPackageNotFound
}
