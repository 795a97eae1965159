package registry

import "testing"

func TestCount(t *testing.T) {
	if got := Count(); got != 44 {
		t.Errorf("Count = %d, want 44", got)
	}
}

func TestCategoryCounts(t *testing.T) {
	want := map[Category]int{
		Standard:     6,
		Enhanced:     5,
		Contrarian:   10,
		Shovels:      3,
		Combined:     5,
		HomeServices: 15,
	}

	total := 0
	for cat, n := range want {
		got := len(ByCategory(cat))
		if got != n {
			t.Errorf("ByCategory(%s) = %d entries, want %d", cat, got, n)
		}
		total += got
	}
	if total != Count() {
		t.Errorf("category totals %d do not cover the registry (%d)", total, Count())
	}
}

func TestByID(t *testing.T) {
	cfg, ok := ByID("absentee-owner")
	if !ok {
		t.Fatal("absentee-owner should be registered")
	}
	if cfg.Name != "Absentee Owner" || cfg.Category != Standard {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.DefaultEnabled {
		t.Error("absentee-owner should be enabled by default")
	}

	if _, ok := ByID("no-such-filter"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestIDs_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range IDs() {
		if id == "" {
			t.Error("empty filter id in registry")
		}
		if seen[id] {
			t.Errorf("duplicate filter id %q", id)
		}
		seen[id] = true
	}
}

func TestSolarNeverPermittedIsCandidate(t *testing.T) {
	if _, ok := ByID("solar-never-permitted"); ok {
		t.Error("solar should not have a never-permitted entry")
	}
	cfg, ok := ByID("solar-candidate")
	if !ok {
		t.Fatal("solar-candidate should be registered")
	}
	if cfg.Name != "Solar Candidate" || cfg.Category != HomeServices {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestDefaultEnabled_OnlyStandard(t *testing.T) {
	for _, cfg := range All() {
		if cfg.DefaultEnabled && cfg.Category != Standard {
			t.Errorf("filter %q is default-enabled outside the standard category", cfg.ID)
		}
	}
}

func TestParamDeclarations(t *testing.T) {
	cfg, _ := ByID("high-equity")
	if len(cfg.Params) != 1 {
		t.Fatalf("high-equity should declare one parameter, got %d", len(cfg.Params))
	}
	p := cfg.Params[0]
	if p.Key != "minEquityPercent" || p.Type != Number {
		t.Errorf("unexpected param: %+v", p)
	}
	if p.Default != 40.0 {
		t.Errorf("Default = %v, want 40", p.Default)
	}
	if p.Min == nil || *p.Min != 0 || p.Max == nil || *p.Max != 100 {
		t.Errorf("bounds = (%v, %v), want (0, 100)", p.Min, p.Max)
	}
}
