package filter

import "testing"

func TestNewMatch_ClampsAndJoins(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		reasons   []string
		wantScore float64
		wantText  string
	}{
		{"in range", 75, []string{"One reason"}, 75, "One reason"},
		{"above max clamps", 150, []string{"Big"}, 100, "Big"},
		{"below min clamps", -5, []string{"Small"}, 0, "Small"},
		{"reasons joined", 50, []string{"First", "Second"}, 50, "First; Second"},
		{"no reasons", 50, nil, 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch("some-filter", tt.score, tt.reasons...)
			if !m.Matched {
				t.Fatal("NewMatch must produce a matched result")
			}
			if m.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", m.Score, tt.wantScore)
			}
			if m.Reason != tt.wantText {
				t.Errorf("Reason = %q, want %q", m.Reason, tt.wantText)
			}
		})
	}
}

func TestNoMatch(t *testing.T) {
	m := NoMatch("some-filter", "because")
	if m.Matched {
		t.Error("NoMatch must be unmatched")
	}
	if m.Score != 0 {
		t.Errorf("Score = %v, want 0", m.Score)
	}
	if m.Reason != "because" {
		t.Errorf("Reason = %q, want %q", m.Reason, "because")
	}
}

func TestMatch_WithData(t *testing.T) {
	m := NewMatch("some-filter", 80).WithData(map[string]any{"miles": 1200.0})
	if m.Data["miles"] != 1200.0 {
		t.Errorf("Data = %v, want miles entry", m.Data)
	}
}

func TestParams_TypedGetters(t *testing.T) {
	p := Params{
		"floatVal":  42.5,
		"intVal":    7,
		"floatInt":  30.0,
		"boolVal":   true,
		"stringVal": "expired",
		"wrongType": "not a number",
	}

	if got := p.Float("floatVal", 0); got != 42.5 {
		t.Errorf("Float = %v, want 42.5", got)
	}
	if got := p.Float("intVal", 0); got != 7 {
		t.Errorf("Float from int = %v, want 7", got)
	}
	if got := p.Float("missing", 10); got != 10 {
		t.Errorf("Float default = %v, want 10", got)
	}
	if got := p.Float("wrongType", 10); got != 10 {
		t.Errorf("Float wrong type = %v, want default 10", got)
	}
	if got := p.Int("floatInt", 0); got != 30 {
		t.Errorf("Int from float = %v, want 30", got)
	}
	if got := p.Int("missing", 5); got != 5 {
		t.Errorf("Int default = %v, want 5", got)
	}
	if got := p.Bool("boolVal", false); !got {
		t.Error("Bool = false, want true")
	}
	if got := p.Bool("missing", true); !got {
		t.Error("Bool default = false, want true")
	}
	if got := p.String("stringVal", ""); got != "expired" {
		t.Errorf("String = %q, want %q", got, "expired")
	}
	if got := p.String("intVal", "fallback"); got != "fallback" {
		t.Errorf("String wrong type = %q, want fallback", got)
	}
}

func TestParams_NilSafe(t *testing.T) {
	var p Params
	if got := p.Float("any", 3); got != 3 {
		t.Errorf("nil Params Float = %v, want 3", got)
	}
	if got := p.Bool("any", true); !got {
		t.Error("nil Params Bool should return the default")
	}
}

func TestParams_Hash(t *testing.T) {
	var nilParams Params
	if got := nilParams.Hash(); got != DefaultParamsHash {
		t.Errorf("nil hash = %q, want %q", got, DefaultParamsHash)
	}

	if got := (Params{}).Hash(); got != "{}" {
		t.Errorf("empty hash = %q, want {}", got)
	}
	if nilParams.Hash() == (Params{}).Hash() {
		t.Error("nil and empty parameter sets must hash differently")
	}

	a := Params{"minEquityPercent": 40.0, "maxEquityPercent": 70.0}
	b := Params{"maxEquityPercent": 70.0, "minEquityPercent": 40.0}
	if a.Hash() != b.Hash() {
		t.Errorf("hash must be order-independent: %q vs %q", a.Hash(), b.Hash())
	}

	c := Params{"minEquityPercent": 50.0}
	if a.Hash() == c.Hash() {
		t.Error("different values must hash differently")
	}
}

func TestActive_EffectiveWeight(t *testing.T) {
	if got := (Active{Weight: 2.5}).EffectiveWeight(); got != 2.5 {
		t.Errorf("EffectiveWeight = %v, want 2.5", got)
	}
	if got := (Active{}).EffectiveWeight(); got != 1 {
		t.Errorf("zero weight EffectiveWeight = %v, want 1", got)
	}
}

func TestMode_IsValid(t *testing.T) {
	for _, m := range []Mode{And, Or, Weighted} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Mode("XOR").IsValid() {
		t.Error("XOR should not be valid")
	}
	if Mode("").IsValid() {
		t.Error("empty mode should not be valid")
	}
}
