package scene

import (
	"github.com/ivlev/versus2video/internal/comparison"
	"github.com/ivlev/versus2video/internal/project"
)

// Default per-type durations in milliseconds.
const (
	DurationIntroMs    = 2500
	DurationSubintroMs = 2000
	DurationBodyMs     = 1500
	DurationCameraMs   = 2000
	DurationScoreMs    = 3000
)

// DefaultDurationMs returns the type-based duration used when no override is set.
func DefaultDurationMs(t Type) int {
	switch t {
	case TypeIntro:
		return DurationIntroMs
	case TypeSubintro:
		return DurationSubintroMs
	case TypeCamera:
		return DurationCameraMs
	case TypeScore:
		return DurationScoreMs
	default:
		return DurationBodyMs
	}
}

// Effective is the fully resolved, override-aware view of a scene. Every
// field is concrete — no partial merges, nothing left undefined.
type Effective struct {
	ID         string
	Type       Type
	Label      string
	Enabled    bool
	DurationMs int
	Transition project.Transition
	Text       map[string]string
	Winner     comparison.Winner
	Media      *project.MediaOverride
	Elements   []project.Element
	Auto       AutoData
}

// Resolve merges a scene's auto data with its override into one effective
// view. Pure and idempotent: safe to call on every frame tick.
func Resolve(s *Scene) Effective {
	eff := Effective{
		ID:         s.ID,
		Type:       s.Type,
		Label:      s.Label,
		Enabled:    true,
		DurationMs: DefaultDurationMs(s.Type),
		Transition: project.Transition{Type: "none"},
		Winner:     s.Auto.Winner,
		Elements:   s.Elements,
		Auto:       s.Auto,
	}

	// Text: auto placeholders first, override entries win key by key.
	eff.Text = make(map[string]string, len(s.Auto.Placeholders))
	for k, v := range s.Auto.Placeholders {
		eff.Text[k] = v
	}

	ov := s.Override
	if ov == nil {
		return eff
	}

	if ov.Enabled != nil {
		eff.Enabled = *ov.Enabled
	}
	if ov.DurationMs != nil {
		eff.DurationMs = *ov.DurationMs
	}
	if ov.Transition != nil {
		eff.Transition = *ov.Transition
	}
	for k, v := range ov.Text {
		eff.Text[k] = v
	}
	if ov.HasWinnerOverride {
		// An explicit empty override means "forced unknown".
		eff.Winner = ov.WinnerOverride
	}
	eff.Media = ov.Media
	if len(ov.Elements) > 0 {
		eff.Elements = ov.Elements
	}

	return eff
}
