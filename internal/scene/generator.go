package scene

import (
	"fmt"

	"github.com/ivlev/versus2video/internal/comparison"
	"github.com/ivlev/versus2video/internal/project"
)

// Generate builds the ordered scene list for a project in two passes:
// classification + comparison first, then the aggregate score pass over the
// effective (override-aware) winners. Deterministic: identical inputs yield
// an identical scene list, ids included — the ids are the section keys.
func Generate(p *project.Project) []Scene {
	scenes := make([]Scene, 0, len(p.Template.Sections))

	// Pass 1: classify sections, compare specs, bind overrides.
	for _, section := range p.Template.Sections {
		t := ClassifyKey(section.Key)
		s := Scene{
			ID:   section.Key,
			Type: t,
		}

		auto := AutoData{
			Placeholders: map[string]string{
				"phoneA": p.PhoneA.Name,
				"phoneB": p.PhoneB.Name,
			},
		}

		switch t {
		case TypeIntro, TypeSubintro:
			s.Label = sectionLabel(section, section.Key)
			auto.Placeholders["title"] = s.Label
		case TypeScore:
			s.Label = sectionLabel(section, "Final Score")
			auto.Placeholders["title"] = s.Label
			// Score placeholders are rewritten by the aggregate pass.
			auto.Placeholders["scoreA"] = "0"
			auto.Placeholders["scoreB"] = "0"
			auto.Winner = comparison.WinnerTie
		case TypeBody, TypeCamera:
			rule := p.RuleFor(section.Key)
			specKey := section.Key
			if rule != nil && rule.SpecKey != "" {
				specKey = rule.SpecKey
			}
			valueA, _ := p.PhoneA.SpecValue(specKey)
			valueB, _ := p.PhoneB.SpecValue(specKey)
			result := comparison.CompareSpecs(valueA, valueB, rule)

			s.Label = sectionLabel(section, p.PhoneA.SpecLabel(specKey))
			auto.SpecKey = specKey
			auto.SpecA = valueA
			auto.SpecB = valueB
			auto.Winner = result.Winner
			auto.Placeholders["title"] = s.Label
			auto.Placeholders["valueA"] = valueA
			auto.Placeholders["valueB"] = valueB
			auto.Placeholders["winner"] = string(result.Winner)
		}

		if ov, ok := p.Overrides[section.Key]; ok {
			ovCopy := ov
			s.Override = &ovCopy
		}

		s.Auto = auto
		s.Elements = DefaultLayout(&s, p)
		scenes = append(scenes, s)
	}

	// Pass 2: tally body scenes by their effective winner, so a manual
	// winner override moves the score, then rewrite the score scene. Every
	// body scene counts, disabled ones included: disabling hides a scene
	// from the timeline, it does not un-compare the specs.
	scoreA, scoreB := 0, 0
	for i := range scenes {
		if scenes[i].Type != TypeBody {
			continue
		}
		switch Resolve(&scenes[i]).Winner {
		case comparison.WinnerA:
			scoreA++
		case comparison.WinnerB:
			scoreB++
		}
	}

	for i := range scenes {
		if scenes[i].Type != TypeScore {
			continue
		}
		s := &scenes[i]
		s.Auto.ScoreA = scoreA
		s.Auto.ScoreB = scoreB
		switch {
		case scoreA > scoreB:
			s.Auto.Winner = comparison.WinnerA
		case scoreB > scoreA:
			s.Auto.Winner = comparison.WinnerB
		default:
			s.Auto.Winner = comparison.WinnerTie
		}
		s.Auto.Placeholders["scoreA"] = fmt.Sprintf("%d", scoreA)
		s.Auto.Placeholders["scoreB"] = fmt.Sprintf("%d", scoreB)
		s.Auto.Placeholders["winner"] = string(s.Auto.Winner)
	}

	return scenes
}

// TotalDurationMs sums the effective durations of all enabled scenes.
func TotalDurationMs(scenes []Scene) int {
	total := 0
	for i := range scenes {
		eff := Resolve(&scenes[i])
		if eff.Enabled {
			total += eff.DurationMs
		}
	}
	return total
}

// EnabledScenes filters the list down to the scenes that take part in
// playback and export, preserving order.
func EnabledScenes(scenes []Scene) []Scene {
	out := make([]Scene, 0, len(scenes))
	for i := range scenes {
		if Resolve(&scenes[i]).Enabled {
			out = append(out, scenes[i])
		}
	}
	return out
}

func sectionLabel(section project.TemplateSection, fallback string) string {
	if section.Content != "" {
		return section.Content
	}
	return fallback
}
