// Package registry holds the static filter metadata: one Config per filter id
// with its category, display name, and configurable parameter bounds. The
// table is defined once at process start and never mutated. It backs
// request validation and UI metadata generation only — classifiers receive
// already-resolved parameters and never consult the registry.
package registry

// Category groups filters by evaluation philosophy.
type Category string

// Filter categories.
const (
	Standard     Category = "standard"
	Enhanced     Category = "enhanced"
	Contrarian   Category = "contrarian"
	Shovels      Category = "shovels"
	Combined     Category = "combined"
	HomeServices Category = "home-services"
)

// Categories lists all categories in display order.
var Categories = []Category{Standard, Enhanced, Contrarian, Shovels, Combined, HomeServices}

// ParamType is the declared type of a configurable parameter.
type ParamType string

// Parameter types.
const (
	Number  ParamType = "number"
	Boolean ParamType = "boolean"
	Select  ParamType = "select"
)

// Param describes one configurable parameter of a filter.
type Param struct {
	Key         string    `json:"key"`
	Type        ParamType `json:"type"`
	Default     any       `json:"default"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Step        *float64  `json:"step,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Config is the static registry entry for one filter.
type Config struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       Category `json:"category"`
	DefaultEnabled bool     `json:"defaultEnabled"`
	Params         []Param  `json:"parameters,omitempty"`
}

func num(key string, def, min, max, step float64, desc string) Param {
	return Param{Key: key, Type: Number, Default: def, Min: &min, Max: &max, Step: &step, Description: desc}
}

// configs is the full filter table. Entry order follows category order.
var configs = []Config{
	// --- standard ---
	{
		ID:             "absentee-owner",
		Name:           "Absentee Owner",
		Description:    "Owner's mailing address differs from the property address, or the owner-occupancy flag is explicitly false.",
		Category:       Standard,
		DefaultEnabled: true,
	},
	{
		ID:             "high-equity",
		Name:           "High Equity",
		Description:    "Owner equity at or above a configurable percentage of the property value.",
		Category:       Standard,
		DefaultEnabled: true,
		Params: []Param{
			num("minEquityPercent", 40, 0, 100, 5, "Minimum equity percentage to match"),
		},
	},
	{
		ID:             "free-and-clear",
		Name:           "Free & Clear",
		Description:    "Property owned outright: 100% equity or zero mortgage balance.",
		Category:       Standard,
		DefaultEnabled: true,
	},
	{
		ID:             "tired-landlord",
		Name:           "Tired Landlord",
		Description:    "Long-term owner of a non-owner-occupied rental, a classic motivated-seller signal.",
		Category:       Standard,
		DefaultEnabled: true,
		Params: []Param{
			num("minOwnershipYears", 10, 1, 50, 1, "Minimum years of ownership"),
		},
	},
	{
		ID:             "out-of-state-owner",
		Name:           "Out-of-State Owner",
		Description:    "Owner's mailing or registration state differs from the property state.",
		Category:       Standard,
		DefaultEnabled: true,
	},
	{
		ID:             "failed-listing",
		Name:           "Failed Listing",
		Description:    "Listing that expired, was withdrawn, or was cancelled without selling.",
		Category:       Standard,
		DefaultEnabled: true,
		Params: []Param{
			num("minDaysOnMarket", 90, 0, 720, 30, "Days on market for the extra-stale bonus"),
		},
	},

	// --- enhanced ---
	{
		ID:          "new-absentee",
		Name:        "New Absentee",
		Description: "Recently purchased and already non-owner-occupied — a likely fresh investor.",
		Category:    Enhanced,
		Params: []Param{
			num("maxOwnershipMonths", 12, 1, 60, 1, "Maximum months of ownership"),
		},
	},
	{
		ID:          "distant-owner",
		Name:        "Distant Owner",
		Description: "Owner whose mailing state's centroid is far from the property state's centroid. Coarse distance estimate, not geocoding.",
		Category:    Enhanced,
		Params: []Param{
			num("minDistanceMiles", 500, 50, 3000, 50, "Minimum centroid distance in miles"),
		},
	},
	{
		ID:          "multi-property-owner",
		Name:        "Multi-Property Owner",
		Description: "Entity-held, non-owner-occupied property suggesting a portfolio owner.",
		Category:    Enhanced,
	},
	{
		ID:          "equity-sweet-spot",
		Name:        "Equity Sweet Spot",
		Description: "Equity inside the band where sellers can deal but still carry a loan worth retiring.",
		Category:    Enhanced,
		Params: []Param{
			num("minEquityPercent", 40, 0, 100, 5, "Bottom of the equity band"),
			num("maxEquityPercent", 70, 0, 100, 5, "Top of the equity band"),
		},
	},
	{
		ID:          "accidental-landlord",
		Name:        "Accidental Landlord",
		Description: "Individual owner renting out a home shortly after occupying it, inferred from occupancy flip and local mailing address.",
		Category:    Enhanced,
		Params: []Param{
			num("maxOwnershipYears", 3, 1, 10, 1, "Maximum years since the occupancy flip window"),
		},
	},

	// --- contrarian ---
	{
		ID:          "stalled-contract",
		Name:        "Stalled Contract",
		Description: "Pending or contingent listing stuck well past a normal closing window.",
		Category:    Contrarian,
		Params: []Param{
			num("minPendingDays", 45, 14, 365, 1, "Days on market while pending"),
		},
	},
	{
		ID:          "shrinking-portfolio",
		Name:        "Shrinking Portfolio",
		Description: "Entity owner actively listing rental inventory — a landlord reducing exposure.",
		Category:    Contrarian,
	},
	{
		ID:          "negative-cashflow",
		Name:        "Negative Cash Flow",
		Description: "Rental whose estimated rent no longer covers carrying costs.",
		Category:    Contrarian,
		Params: []Param{
			num("minMonthlyLoss", 200, 0, 5000, 50, "Minimum estimated monthly shortfall in dollars"),
		},
	},
	{
		ID:          "tax-spike",
		Name:        "Tax Spike",
		Description: "Year-over-year property tax increase above a threshold percentage.",
		Category:    Contrarian,
		Params: []Param{
			num("minIncreasePercent", 25, 5, 200, 5, "Minimum year-over-year tax increase"),
		},
	},
	{
		ID:          "long-held-no-refi",
		Name:        "Long Held, Never Refinanced",
		Description: "Very long ownership with a small remaining mortgage — no cash-out activity.",
		Category:    Contrarian,
		Params: []Param{
			num("minOwnershipYears", 15, 5, 50, 1, "Minimum years of ownership"),
		},
	},
	{
		ID:          "underwater-purchase",
		Name:        "Underwater Purchase",
		Description: "Current estimated value below the last sale price.",
		Category:    Contrarian,
		Params: []Param{
			num("minDeclinePercent", 5, 1, 50, 1, "Minimum value decline versus last sale"),
		},
	},
	{
		ID:          "fsbo-fatigue",
		Name:        "FSBO Fatigue",
		Description: "Owner-listed property lingering on market without an agent.",
		Category:    Contrarian,
		Params: []Param{
			num("minDaysOnMarket", 60, 14, 365, 1, "Days on market before fatigue sets in"),
		},
	},
	{
		ID:          "aging-in-place",
		Name:        "Aging In Place",
		Description: "Individual owner-occupant with multi-decade tenure — a likely life-stage transition.",
		Category:    Contrarian,
		Params: []Param{
			num("minOwnershipYears", 30, 15, 60, 1, "Minimum years of ownership"),
		},
	},
	{
		ID:          "likely-vacant",
		Name:        "Likely Vacant",
		Description: "Non-owner-occupied, unlisted, unrented property showing distress markers.",
		Category:    Contrarian,
	},
	{
		ID:          "investor-exit",
		Name:        "Investor Exit",
		Description: "Entity owner listing inside the typical flip-or-hold decision window.",
		Category:    Contrarian,
	},

	// --- shovels ---
	{
		ID:          "recent-permit-activity",
		Name:        "Recent Permit Activity",
		Description: "Contractor permits pulled within the last two years.",
		Category:    Shovels,
		Params: []Param{
			num("minRecentPermits", 1, 1, 10, 1, "Minimum permits in the recent window"),
		},
	},
	{
		ID:          "stalled-project",
		Name:        "Stalled Project",
		Description: "An open permit with no progress — work that started and stopped.",
		Category:    Shovels,
	},
	{
		ID:          "expired-permits",
		Name:        "Expired Permits",
		Description: "Permits that lapsed before final inspection.",
		Category:    Shovels,
	},

	// --- combined ---
	{
		ID:          "abandoned-project-equity",
		Name:        "Abandoned Project + Equity",
		Description: "High-equity owner sitting on a stalled or expired project.",
		Category:    Combined,
		Params: []Param{
			num("minEquityPercent", 50, 0, 100, 5, "Minimum equity percentage"),
		},
	},
	{
		ID:          "flip-in-progress",
		Name:        "Flip In Progress",
		Description: "Recently purchased by an investor with active renovation permits.",
		Category:    Combined,
	},
	{
		ID:          "deferred-maintenance",
		Name:        "Deferred Maintenance",
		Description: "Old home, long ownership, and no permit history on record.",
		Category:    Combined,
		Params: []Param{
			num("minYearsSincePermit", 15, 5, 40, 1, "Years without permitted work"),
		},
	},
	{
		ID:          "failed-inspections",
		Name:        "Failed Inspections",
		Description: "Low inspection pass rate paired with owner distress markers.",
		Category:    Combined,
		Params: []Param{
			num("maxPassRatePercent", 70, 10, 100, 5, "Maximum inspection pass rate"),
		},
	},
	{
		ID:          "permit-rich-exit",
		Name:        "Permit-Rich Exit",
		Description: "Heavily renovated property now listed — value-add work looking for a buyer.",
		Category:    Combined,
	},
}

func init() {
	configs = append(configs, homeServiceConfigs()...)
	byID = make(map[string]Config, len(configs))
	for _, c := range configs {
		if _, dup := byID[c.ID]; dup {
			panic("registry: duplicate filter id " + c.ID)
		}
		byID[c.ID] = c
	}
}

var byID map[string]Config

// homeServiceConfigs builds the 15 vertical readiness entries:
// five systems, each with replacement-due, aging, and never-permitted checks.
func homeServiceConfigs() []Config {
	type vertical struct {
		prefix   string
		label    string
		lifeYrs  float64
		agingYrs float64
	}
	verticals := []vertical{
		{"roof", "Roof", 20, 12},
		{"hvac", "HVAC", 15, 8},
		{"electrical", "Electrical", 35, 25},
		{"plumbing", "Plumbing", 40, 25},
		{"solar", "Solar", 20, 12},
	}

	out := make([]Config, 0, len(verticals)*3)
	for _, v := range verticals {
		out = append(out, Config{
			ID:          v.prefix + "-replacement-due",
			Name:        v.label + " Replacement Due",
			Description: v.label + " system at or past its expected service life, from permit history or build year.",
			Category:    HomeServices,
			Params: []Param{
				num("minSystemAgeYears", v.lifeYrs, 1, 60, 1, "System age at which replacement is due"),
			},
		})
		out = append(out, Config{
			ID:          v.prefix + "-aging",
			Name:        v.label + " Aging System",
			Description: v.label + " system inside the repair-likely window before end of life.",
			Category:    HomeServices,
			Params: []Param{
				num("minSystemAgeYears", v.agingYrs, 1, 60, 1, "System age at which the repair window opens"),
			},
		})
		neverID := v.prefix + "-never-permitted"
		neverName := v.label + " Never Permitted"
		neverDesc := "No " + v.label + " permit on record for an older home."
		if v.prefix == "solar" {
			// Solar has no baseline system to wear out; absence means an install opportunity.
			neverID = "solar-candidate"
			neverName = "Solar Candidate"
			neverDesc = "No solar installation on record for a higher-value home."
		}
		out = append(out, Config{
			ID:          neverID,
			Name:        neverName,
			Description: neverDesc,
			Category:    HomeServices,
			Params: []Param{
				num("minHomeAgeYears", 20, 5, 100, 5, "Minimum home age in years"),
			},
		})
	}
	return out
}

// ByID looks up a filter config.
func ByID(id string) (Config, bool) {
	c, ok := byID[id]
	return c, ok
}

// ByCategory returns all configs in one category, in table order.
func ByCategory(cat Category) []Config {
	var out []Config
	for _, c := range configs {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// All returns every config in table order.
func All() []Config {
	out := make([]Config, len(configs))
	copy(out, configs)
	return out
}

// IDs returns every registered filter id in table order.
func IDs() []string {
	out := make([]string, len(configs))
	for i, c := range configs {
		out[i] = c.ID
	}
	return out
}

// Count returns the number of registered filters.
func Count() int { return len(configs) }
