package comparison

import (
	"strconv"
	"strings"
)

// Winner identifies the outcome side of a spec comparison.
type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "TIE"
)

// RuleType selects the comparison policy for a spec key.
type RuleType string

const (
	RuleHigherWins   RuleType = "higher_wins"
	RuleLowerWins    RuleType = "lower_wins"
	RuleManual       RuleType = "manual"
	RuleAlphanumeric RuleType = "alphanumeric"
	RuleRanking      RuleType = "ranking"
)

// AlphaMode controls which numeric part wins under the alphanumeric rule.
type AlphaMode string

const (
	AlphaHighNumberWins AlphaMode = "high_number_wins"
	AlphaLowNumberWins  AlphaMode = "low_number_wins"
)

// RankingDirection controls which list index wins under the ranking rule.
type RankingDirection string

const (
	RankingAscending  RankingDirection = "ascending"
	RankingDescending RankingDirection = "descending"
)

// Rule binds a comparison policy to a spec key.
type Rule struct {
	ID               string           `yaml:"id,omitempty"`
	SpecKey          string           `yaml:"specKey"`
	Type             RuleType         `yaml:"ruleType"`
	AlphaMode        AlphaMode        `yaml:"alphaMode,omitempty"`
	RankingList      []string         `yaml:"rankingList,omitempty"`
	RankingDirection RankingDirection `yaml:"rankingDirection,omitempty"`
}

// Result is the outcome of comparing two spec values.
type Result struct {
	Winner Winner
	Reason string
}

func tie(reason string) Result {
	return Result{Winner: WinnerTie, Reason: reason}
}

// CompareSpecs scores two raw spec values under an optional rule.
// Pure: no I/O, identical inputs always yield identical results.
// Malformed values never fail — they degrade to TIE with a reason.
func CompareSpecs(valueA, valueB string, rule *Rule) Result {
	if rule == nil {
		return tie("no rule defined")
	}

	switch rule.Type {
	case RuleManual:
		return tie("manual evaluation required")
	case RuleHigherWins, RuleLowerWins:
		return compareNumeric(valueA, valueB, rule.Type)
	case RuleAlphanumeric:
		return compareAlphanumeric(valueA, valueB, rule.AlphaMode)
	case RuleRanking:
		return compareRanking(valueA, valueB, rule)
	default:
		return tie("unknown rule type")
	}
}

func compareNumeric(valueA, valueB string, rt RuleType) Result {
	numA, okA := extractFloat(valueA)
	numB, okB := extractFloat(valueB)
	if !okA || !okB {
		return tie("value is not numeric")
	}
	if numA == numB {
		return tie("equal values")
	}

	aWins := numA > numB
	if rt == RuleLowerWins {
		aWins = !aWins
	}
	if aWins {
		return Result{Winner: WinnerA, Reason: reasonDirection(rt)}
	}
	return Result{Winner: WinnerB, Reason: reasonDirection(rt)}
}

func reasonDirection(rt RuleType) string {
	if rt == RuleLowerWins {
		return "lower value wins"
	}
	return "higher value wins"
}

// extractFloat strips every character except digits and '.' and parses the rest.
func extractFloat(value string) (float64, bool) {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// splitAlphanumeric breaks a value into the normalized text prefix before the
// first embedded integer and the integer itself ("G8i" -> "g", 8).
func splitAlphanumeric(value string) (prefix string, num int, hasNum bool) {
	trimmed := strings.TrimSpace(value)
	start := -1
	end := -1
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			end = i + 1
		} else if start != -1 {
			break
		}
	}

	if start == -1 {
		return strings.ToLower(trimmed), 0, false
	}

	n, err := strconv.Atoi(trimmed[start:end])
	if err != nil {
		return strings.ToLower(trimmed), 0, false
	}
	return strings.ToLower(strings.TrimSpace(trimmed[:start])), n, true
}

func compareAlphanumeric(valueA, valueB string, mode AlphaMode) Result {
	prefixA, numA, hasNumA := splitAlphanumeric(valueA)
	prefixB, numB, hasNumB := splitAlphanumeric(valueB)

	if hasNumA && hasNumB && numA != numB {
		aWins := numA > numB
		if mode == AlphaLowNumberWins {
			aWins = !aWins
		}
		if aWins {
			return Result{Winner: WinnerA, Reason: "numeric part decides"}
		}
		return Result{Winner: WinnerB, Reason: "numeric part decides"}
	}

	if prefixA == prefixB {
		// Same base model: the suffixed variant carries more detail.
		rawA := strings.TrimSpace(valueA)
		rawB := strings.TrimSpace(valueB)
		if len(rawA) == len(rawB) {
			return tie("equivalent values")
		}
		if len(rawA) > len(rawB) {
			return Result{Winner: WinnerA, Reason: "longer variant wins"}
		}
		return Result{Winner: WinnerB, Reason: "longer variant wins"}
	}

	if prefixA > prefixB {
		return Result{Winner: WinnerA, Reason: "lexicographic order"}
	}
	return Result{Winner: WinnerB, Reason: "lexicographic order"}
}

// rankIndex returns the first case-insensitive match of value in list, or -1.
func rankIndex(list []string, value string) int {
	needle := strings.ToLower(strings.TrimSpace(value))
	for i, entry := range list {
		if strings.ToLower(strings.TrimSpace(entry)) == needle {
			return i
		}
	}
	return -1
}

func compareRanking(valueA, valueB string, rule *Rule) Result {
	idxA := rankIndex(rule.RankingList, valueA)
	idxB := rankIndex(rule.RankingList, valueB)

	switch {
	case idxA == -1 && idxB == -1:
		return tie("neither value is ranked")
	case idxA == -1:
		return Result{Winner: WinnerB, Reason: "only B is ranked"}
	case idxB == -1:
		return Result{Winner: WinnerA, Reason: "only A is ranked"}
	case idxA == idxB:
		return tie("equal rank")
	}

	aWins := idxA > idxB
	if rule.RankingDirection == RankingDescending {
		aWins = !aWins
	}
	if aWins {
		return Result{Winner: WinnerA, Reason: "rank position decides"}
	}
	return Result{Winner: WinnerB, Reason: "rank position decides"}
}
