// Package property defines the normalized property record every filter reads.
//
// All numeric and boolean attributes are pointer-typed: a nil field means
// "unknown", which classifiers must treat as a distinct outcome from a known
// zero or false value.
package property

import (
	"strings"
	"time"
)

// Record is the canonical property input.
type Record struct {
	// Identity / location
	ID        string   `json:"id"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zip"`
	County    string   `json:"county"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Physical
	PropertyType  string   `json:"propertyType,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFootage *int     `json:"squareFootage,omitempty"`
	YearBuilt     *int     `json:"yearBuilt,omitempty"`
	LotSize       *float64 `json:"lotSize,omitempty"`

	// Ownership
	OwnerName       string `json:"ownerName,omitempty"`
	OwnerType       string `json:"ownerType,omitempty"` // individual, llc, corporation, trust
	OwnerState      string `json:"ownerState,omitempty"`
	MailingAddress  string `json:"mailingAddress,omitempty"`
	MailingCity     string `json:"mailingCity,omitempty"`
	MailingState    string `json:"mailingState,omitempty"`
	MailingZip      string `json:"mailingZip,omitempty"`
	OwnershipMonths *int   `json:"ownershipMonths,omitempty"`
	IsOwnerOccupied *bool  `json:"isOwnerOccupied,omitempty"`

	// Financial
	EstimatedValue  *float64 `json:"estimatedValue,omitempty"`
	MortgageBalance *float64 `json:"mortgageBalance,omitempty"`
	EquityPercent   *float64 `json:"equityPercent,omitempty"`
	EquityAmount    *float64 `json:"equityAmount,omitempty"`
	RentEstimate    *float64 `json:"rentEstimate,omitempty"`
	TaxAmount       *float64 `json:"taxAmount,omitempty"`
	PriorTaxAmount  *float64 `json:"priorTaxAmount,omitempty"`
	LastSalePrice   *float64 `json:"lastSalePrice,omitempty"`
	LastSaleDate    string   `json:"lastSaleDate,omitempty"` // ISO date, may be malformed

	// Listing
	ListingStatus string   `json:"listingStatus,omitempty"` // active, pending, expired, withdrawn, cancelled, fsbo
	ListingDate   string   `json:"listingDate,omitempty"`
	DaysOnMarket  *int     `json:"daysOnMarket,omitempty"`
	IsListed      *bool    `json:"isListed,omitempty"`
	AskingPrice   *float64 `json:"askingPrice,omitempty"`

	// Distress indicators
	IsPreForeclosure     *bool    `json:"isPreForeclosure,omitempty"`
	PreForeclosureAmount *float64 `json:"preForeclosureAmount,omitempty"`
	PreForeclosureDate   string   `json:"preForeclosureDate,omitempty"`
	IsTaxDelinquent      *bool    `json:"isTaxDelinquent,omitempty"`
	TaxDelinquentAmount  *float64 `json:"taxDelinquentAmount,omitempty"`
	TaxDelinquentDate    string   `json:"taxDelinquentDate,omitempty"`

	// Permit / contractor join (optional)
	Permits *PermitData `json:"permits,omitempty"`
}

// PermitData is the contractor-permit enrichment for a property.
// A nil ShovelsAddressID-less join means the permit-dependent filters
// short-circuit to unmatched.
type PermitData struct {
	ShovelsAddressID   string   `json:"shovelsAddressId"`
	PermitCount        *int     `json:"permitCount,omitempty"`
	RecentPermitCount  *int     `json:"recentPermitCount,omitempty"` // last 24 months
	TotalJobValue      *float64 `json:"totalJobValue,omitempty"`
	InspectionPassRate *float64 `json:"inspectionPassRate,omitempty"` // 0-1
	HasStalledPermit   *bool    `json:"hasStalledPermit,omitempty"`
	HasExpiredPermit   *bool    `json:"hasExpiredPermit,omitempty"`

	// Per-system last-worked dates (ISO, may be empty or malformed).
	LastRoofingDate     string `json:"lastRoofingDate,omitempty"`
	LastHVACDate        string `json:"lastHvacDate,omitempty"`
	LastElectricalDate  string `json:"lastElectricalDate,omitempty"`
	LastPlumbingDate    string `json:"lastPlumbingDate,omitempty"`
	LastSolarDate       string `json:"lastSolarDate,omitempty"`
	LastWaterHeaterDate string `json:"lastWaterHeaterDate,omitempty"`
}

// HasPermitData reports whether the permit join is present.
func (r *Record) HasPermitData() bool {
	return r.Permits != nil && r.Permits.ShovelsAddressID != ""
}

// OwnershipYears returns the ownership duration in years, or false when unknown.
func (r *Record) OwnershipYears() (float64, bool) {
	if r.OwnershipMonths == nil {
		return 0, false
	}
	return float64(*r.OwnershipMonths) / 12.0, true
}

// HasMailingInfo reports whether any mailing-address signal is available for
// comparison against the property address.
func (r *Record) HasMailingInfo() bool {
	return r.MailingAddress != "" || r.MailingState != ""
}

// EntityOwned reports whether the owner looks like a legal entity rather than
// a person, from the owner type when present, falling back to name markers.
func (r *Record) EntityOwned() bool {
	switch strings.ToLower(r.OwnerType) {
	case "llc", "corporation", "trust":
		return true
	case "individual":
		return false
	}
	name := strings.ToUpper(r.OwnerName)
	for _, marker := range []string{" LLC", " L.L.C", " INC", " CORP", " TRUST", " LP", " LTD", " PROPERTIES", " HOLDINGS"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Age returns the building age in years relative to now, or false when
// yearBuilt is unknown.
func (r *Record) Age(now time.Time) (int, bool) {
	if r.YearBuilt == nil || *r.YearBuilt <= 0 {
		return 0, false
	}
	age := now.Year() - *r.YearBuilt
	if age < 0 {
		age = 0
	}
	return age, true
}
