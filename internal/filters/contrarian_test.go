package filters

import (
	"testing"

	"github.com/parcelworks/dealfilter/internal/domain/property"
)

func TestStalledContract(t *testing.T) {
	tests := []struct {
		name      string
		p         *property.Record
		wantMatch bool
		wantScore float64
	}{
		{"pending past threshold", &property.Record{ListingStatus: "pending", DaysOnMarket: iptr(75)}, true, 85},
		{"contingent at threshold", &property.Record{ListingStatus: "contingent", DaysOnMarket: iptr(45)}, true, 75},
		{"pending too fresh", &property.Record{ListingStatus: "pending", DaysOnMarket: iptr(10)}, false, 0},
		{"active listing", &property.Record{ListingStatus: "active", DaysOnMarket: iptr(90)}, false, 0},
		{"days unknown", &property.Record{ListingStatus: "pending"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := StalledContract(tt.p, nil)
			if m.Matched != tt.wantMatch {
				t.Fatalf("Matched = %v, want %v (reason: %s)", m.Matched, tt.wantMatch, m.Reason)
			}
			if tt.wantMatch && m.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", m.Score, tt.wantScore)
			}
		})
	}
}

func TestShrinkingPortfolio(t *testing.T) {
	t.Run("entity selling", func(t *testing.T) {
		p := &property.Record{OwnerType: "llc", IsListed: bptr(true)}
		m := ShrinkingPortfolio(p, nil)
		if !m.Matched || m.Score != 70 {
			t.Errorf("got (%v, %v), want matched with score 70", m.Matched, m.Score)
		}
	})

	t.Run("tax delinquency bonus", func(t *testing.T) {
		p := &property.Record{OwnerType: "llc", IsListed: bptr(true), IsTaxDelinquent: bptr(true)}
		if m := ShrinkingPortfolio(p, nil); m.Score != 80 {
			t.Errorf("Score = %v, want 80", m.Score)
		}
	})

	t.Run("entity holding", func(t *testing.T) {
		p := &property.Record{OwnerType: "llc", IsListed: bptr(false)}
		if m := ShrinkingPortfolio(p, nil); m.Matched {
			t.Error("expected no match when the entity is not selling")
		}
	})

	t.Run("individual owner", func(t *testing.T) {
		p := &property.Record{OwnerType: "individual", IsListed: bptr(true)}
		if m := ShrinkingPortfolio(p, nil); m.Matched {
			t.Error("expected no match for an individual")
		}
	})
}

func TestNegativeCashflow(t *testing.T) {
	t.Run("rent under carrying costs", func(t *testing.T) {
		p := &property.Record{
			IsOwnerOccupied: bptr(false),
			RentEstimate:    fptr(1500),
			TaxAmount:       fptr(6000),            // $500/mo
			MortgageBalance: fptr(250_000),          // $1500/mo at 0.006
		}
		m := NegativeCashflow(p, nil)
		if !m.Matched {
			t.Fatalf("expected match, got %q", m.Reason)
		}
		if m.Score != 80 { // 70 + 500/50
			t.Errorf("Score = %v, want 80", m.Score)
		}
	})

	t.Run("shortfall below threshold", func(t *testing.T) {
		p := &property.Record{
			RentEstimate: fptr(1500),
			TaxAmount:    fptr(6000),
		}
		if m := NegativeCashflow(p, nil); m.Matched {
			t.Error("expected no match for a cash-flowing rental")
		}
	})

	t.Run("no rent estimate", func(t *testing.T) {
		p := &property.Record{TaxAmount: fptr(6000)}
		if m := NegativeCashflow(p, nil); m.Matched {
			t.Error("expected no match without a rent estimate")
		}
	})

	t.Run("no cost data", func(t *testing.T) {
		p := &property.Record{RentEstimate: fptr(1500)}
		if m := NegativeCashflow(p, nil); m.Matched {
			t.Error("expected no match without tax or mortgage data")
		}
	})

	t.Run("owner occupied", func(t *testing.T) {
		p := &property.Record{
			IsOwnerOccupied: bptr(true),
			RentEstimate:    fptr(100),
			TaxAmount:       fptr(50_000),
		}
		if m := NegativeCashflow(p, nil); m.Matched {
			t.Error("expected no match for an owner-occupant")
		}
	})
}

func TestTaxSpike(t *testing.T) {
	t.Run("fifty percent jump", func(t *testing.T) {
		p := &property.Record{TaxAmount: fptr(9000), PriorTaxAmount: fptr(6000)}
		m := TaxSpike(p, nil)
		if !m.Matched || m.Score != 90 { // 65 + (50-25)
			t.Errorf("got (%v, %v), want matched with score 90", m.Matched, m.Score)
		}
	})

	t.Run("modest increase", func(t *testing.T) {
		p := &property.Record{TaxAmount: fptr(6300), PriorTaxAmount: fptr(6000)}
		if m := TaxSpike(p, nil); m.Matched {
			t.Error("expected no match for a 5% increase")
		}
	})

	t.Run("prior year zero", func(t *testing.T) {
		p := &property.Record{TaxAmount: fptr(6000), PriorTaxAmount: fptr(0)}
		if m := TaxSpike(p, nil); m.Matched {
			t.Error("expected no match with unusable prior amount")
		}
	})

	t.Run("history unavailable", func(t *testing.T) {
		if m := TaxSpike(&property.Record{TaxAmount: fptr(6000)}, nil); m.Matched {
			t.Error("expected no match without tax history")
		}
	})
}

func TestLongHeldNoRefi(t *testing.T) {
	t.Run("long tenure, small loan", func(t *testing.T) {
		p := &property.Record{
			OwnershipMonths: iptr(20 * 12),
			MortgageBalance: fptr(40_000),
			EstimatedValue:  fptr(400_000),
		}
		m := LongHeldNoRefi(p, nil)
		if !m.Matched || m.Score != 75 { // 70 + (20-15)
			t.Errorf("got (%v, %v), want matched with score 75", m.Matched, m.Score)
		}
	})

	t.Run("loan too large", func(t *testing.T) {
		p := &property.Record{
			OwnershipMonths: iptr(20 * 12),
			MortgageBalance: fptr(200_000),
			EstimatedValue:  fptr(400_000),
		}
		if m := LongHeldNoRefi(p, nil); m.Matched {
			t.Error("expected no match when the loan suggests refinancing")
		}
	})

	t.Run("tenure too short", func(t *testing.T) {
		p := &property.Record{
			OwnershipMonths: iptr(5 * 12),
			MortgageBalance: fptr(40_000),
			EstimatedValue:  fptr(400_000),
		}
		if m := LongHeldNoRefi(p, nil); m.Matched {
			t.Error("expected no match below the tenure threshold")
		}
	})
}

func TestUnderwaterPurchase(t *testing.T) {
	t.Run("ten percent decline", func(t *testing.T) {
		p := &property.Record{LastSalePrice: fptr(500_000), EstimatedValue: fptr(450_000)}
		m := UnderwaterPurchase(p, nil)
		if !m.Matched || m.Score != 75 { // 65 + (10-5)*2
			t.Errorf("got (%v, %v), want matched with score 75", m.Matched, m.Score)
		}
	})

	t.Run("appreciated", func(t *testing.T) {
		p := &property.Record{LastSalePrice: fptr(400_000), EstimatedValue: fptr(500_000)}
		if m := UnderwaterPurchase(p, nil); m.Matched {
			t.Error("expected no match for an appreciated property")
		}
	})

	t.Run("data unavailable", func(t *testing.T) {
		if m := UnderwaterPurchase(&property.Record{EstimatedValue: fptr(500_000)}, nil); m.Matched {
			t.Error("expected no match without a sale price")
		}
	})
}

func TestFSBOFatigue(t *testing.T) {
	t.Run("lingering fsbo", func(t *testing.T) {
		p := &property.Record{ListingStatus: "fsbo", DaysOnMarket: iptr(90)}
		m := FSBOFatigue(p, nil)
		if !m.Matched || m.Score != 80 { // 70 + 30/3
			t.Errorf("got (%v, %v), want matched with score 80", m.Matched, m.Score)
		}
	})

	t.Run("fresh fsbo", func(t *testing.T) {
		p := &property.Record{ListingStatus: "fsbo", DaysOnMarket: iptr(10)}
		if m := FSBOFatigue(p, nil); m.Matched {
			t.Error("expected no match below the threshold")
		}
	})

	t.Run("agent-listed", func(t *testing.T) {
		p := &property.Record{ListingStatus: "active", DaysOnMarket: iptr(90)}
		if m := FSBOFatigue(p, nil); m.Matched {
			t.Error("expected no match for an agent listing")
		}
	})
}

func TestAgingInPlace(t *testing.T) {
	t.Run("long-tenured occupant", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "individual",
			IsOwnerOccupied: bptr(true),
			OwnershipMonths: iptr(35 * 12),
		}
		m := AgingInPlace(p, nil)
		if !m.Matched || m.Score != 75 { // 70 + (35-30)
			t.Errorf("got (%v, %v), want matched with score 75", m.Matched, m.Score)
		}
	})

	t.Run("not occupying", func(t *testing.T) {
		p := &property.Record{
			IsOwnerOccupied: bptr(false),
			OwnershipMonths: iptr(35 * 12),
		}
		if m := AgingInPlace(p, nil); m.Matched {
			t.Error("expected no match for a non-occupant")
		}
	})

	t.Run("entity held", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "trust",
			IsOwnerOccupied: bptr(true),
			OwnershipMonths: iptr(35 * 12),
		}
		if m := AgingInPlace(p, nil); m.Matched {
			t.Error("expected no match for a trust")
		}
	})
}

func TestLikelyVacant(t *testing.T) {
	t.Run("base signals", func(t *testing.T) {
		p := &property.Record{IsOwnerOccupied: bptr(false)}
		m := LikelyVacant(p, nil)
		if !m.Matched || m.Score != 65 {
			t.Errorf("got (%v, %v), want matched with score 65", m.Matched, m.Score)
		}
	})

	t.Run("distress markers stack", func(t *testing.T) {
		p := &property.Record{
			IsOwnerOccupied:  bptr(false),
			IsTaxDelinquent:  bptr(true),
			IsPreForeclosure: bptr(true),
		}
		if m := LikelyVacant(p, nil); m.Score != 90 {
			t.Errorf("Score = %v, want 90", m.Score)
		}
	})

	t.Run("rental income present", func(t *testing.T) {
		p := &property.Record{IsOwnerOccupied: bptr(false), RentEstimate: fptr(1500)}
		if m := LikelyVacant(p, nil); m.Matched {
			t.Error("expected no match when rent is estimated")
		}
	})

	t.Run("listed property", func(t *testing.T) {
		p := &property.Record{IsOwnerOccupied: bptr(false), IsListed: bptr(true)}
		if m := LikelyVacant(p, nil); m.Matched {
			t.Error("expected no match for a listed property")
		}
	})

	t.Run("occupancy unknown", func(t *testing.T) {
		if m := LikelyVacant(&property.Record{}, nil); m.Matched {
			t.Error("expected no match with unknown occupancy")
		}
	})
}

func TestInvestorExit(t *testing.T) {
	t.Run("inside exit window", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "llc",
			IsListed:        bptr(true),
			OwnershipMonths: iptr(36),
		}
		m := InvestorExit(p, nil)
		if !m.Matched || m.Score != 75 {
			t.Errorf("got (%v, %v), want matched with score 75", m.Matched, m.Score)
		}
	})

	t.Run("equity bonus", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "llc",
			IsListed:        bptr(true),
			OwnershipMonths: iptr(36),
			EquityPercent:   fptr(60),
		}
		if m := InvestorExit(p, nil); m.Score != 85 {
			t.Errorf("Score = %v, want 85", m.Score)
		}
	})

	t.Run("held too briefly", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "llc",
			IsListed:        bptr(true),
			OwnershipMonths: iptr(6),
		}
		if m := InvestorExit(p, nil); m.Matched {
			t.Error("expected no match inside the flip window")
		}
	})

	t.Run("held too long", func(t *testing.T) {
		p := &property.Record{
			OwnerType:       "llc",
			IsListed:        bptr(true),
			OwnershipMonths: iptr(120),
		}
		if m := InvestorExit(p, nil); m.Matched {
			t.Error("expected no match past the exit window")
		}
	})
}
