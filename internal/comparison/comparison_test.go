package comparison

import "testing"

func TestCompareSpecsNumeric(t *testing.T) {
	higher := &Rule{SpecKey: "display", Type: RuleHigherWins}
	lower := &Rule{SpecKey: "weight", Type: RuleLowerWins}

	tests := []struct {
		name     string
		a, b     string
		rule     *Rule
		expected Winner
	}{
		{"higher wins B", "6.1 inches", "6.2 inches", higher, WinnerB},
		{"higher wins A", "5000 mAh", "4500 mAh", higher, WinnerA},
		{"lower wins B", "6.2", "6.1", lower, WinnerB},
		{"lower wins A", "180 g", "195 g", lower, WinnerA},
		{"equal values", "120 Hz", "120 Hz", higher, WinnerTie},
		{"non numeric", "AMOLED", "IPS", higher, WinnerTie},
		{"no rule", "6.1", "6.2", nil, WinnerTie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CompareSpecs(tt.a, tt.b, tt.rule)
			if res.Winner != tt.expected {
				t.Errorf("CompareSpecs(%q, %q) = %s, expected %s (%s)",
					tt.a, tt.b, res.Winner, tt.expected, res.Reason)
			}
		})
	}
}

// Swapping the inputs must swap A/B and preserve TIE.
func TestCompareSpecsAntisymmetric(t *testing.T) {
	rules := []*Rule{
		{SpecKey: "battery", Type: RuleHigherWins},
		{SpecKey: "weight", Type: RuleLowerWins},
	}
	pairs := [][2]string{
		{"3274 mAh", "4000 mAh"},
		{"4000 mAh", "4000 mAh"},
		{"no number", "4000 mAh"},
		{"6.1", "6.2"},
	}

	for _, rule := range rules {
		for _, pair := range pairs {
			fwd := CompareSpecs(pair[0], pair[1], rule)
			rev := CompareSpecs(pair[1], pair[0], rule)

			switch fwd.Winner {
			case WinnerTie:
				if rev.Winner != WinnerTie {
					t.Errorf("%s %v: TIE not preserved on swap, got %s", rule.Type, pair, rev.Winner)
				}
			case WinnerA:
				if rev.Winner != WinnerB {
					t.Errorf("%s %v: expected B after swap, got %s", rule.Type, pair, rev.Winner)
				}
			case WinnerB:
				if rev.Winner != WinnerA {
					t.Errorf("%s %v: expected A after swap, got %s", rule.Type, pair, rev.Winner)
				}
			}
		}
	}
}

func TestCompareSpecsManual(t *testing.T) {
	rule := &Rule{SpecKey: "design", Type: RuleManual}
	res := CompareSpecs("glass", "titanium", rule)
	if res.Winner != WinnerTie {
		t.Errorf("manual rule must return TIE, got %s", res.Winner)
	}
	if res.Reason != "manual evaluation required" {
		t.Errorf("unexpected reason: %s", res.Reason)
	}
}

func TestCompareSpecsAlphanumeric(t *testing.T) {
	rule := &Rule{SpecKey: "chipset", Type: RuleAlphanumeric}
	lowRule := &Rule{SpecKey: "chipset", Type: RuleAlphanumeric, AlphaMode: AlphaLowNumberWins}

	tests := []struct {
		name     string
		a, b     string
		rule     *Rule
		expected Winner
	}{
		{"high number default", "Snapdragon 8", "Snapdragon 7", rule, WinnerA},
		{"low number mode", "Snapdragon 8", "Snapdragon 7", lowRule, WinnerB},
		{"suffixed variant wins", "G8", "G8i", rule, WinnerB},
		{"identical", "G8", "G8", rule, WinnerTie},
		{"text order", "Dimensity 9300", "Exynos 9300", rule, WinnerB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CompareSpecs(tt.a, tt.b, tt.rule)
			if res.Winner != tt.expected {
				t.Errorf("CompareSpecs(%q, %q) = %s, expected %s (%s)",
					tt.a, tt.b, res.Winner, tt.expected, res.Reason)
			}
		})
	}
}

func TestCompareSpecsRanking(t *testing.T) {
	rule := &Rule{
		SpecKey:     "material",
		Type:        RuleRanking,
		RankingList: []string{"plastic", "aluminum", "titanium"},
	}

	// A listed value always beats an unlisted one, regardless of position.
	for _, listed := range rule.RankingList {
		res := CompareSpecs(listed, "wood", rule)
		if res.Winner != WinnerA {
			t.Errorf("ranked %q vs unranked: expected A, got %s", listed, res.Winner)
		}
	}

	res := CompareSpecs("Plastic ", "titanium", rule)
	if res.Winner != WinnerB {
		t.Errorf("ascending: higher index must win, got %s", res.Winner)
	}

	desc := &Rule{
		SpecKey:          "material",
		Type:             RuleRanking,
		RankingList:      rule.RankingList,
		RankingDirection: RankingDescending,
	}
	res = CompareSpecs("plastic", "titanium", desc)
	if res.Winner != WinnerA {
		t.Errorf("descending: lower index must win, got %s", res.Winner)
	}

	if res := CompareSpecs("wood", "glass", rule); res.Winner != WinnerTie {
		t.Errorf("both unranked must be TIE, got %s", res.Winner)
	}
	if res := CompareSpecs("titanium", "TITANIUM", rule); res.Winner != WinnerTie {
		t.Errorf("equal rank must be TIE, got %s", res.Winner)
	}
}
