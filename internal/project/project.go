package project

import (
	"gopkg.in/yaml.v3"

	"github.com/ivlev/versus2video/internal/comparison"
)

// Spec is a single labeled attribute of a phone. Value is free text that may
// embed numbers and units ("4000 mAh", "6.1 inches").
type Spec struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Phone is one side of the comparison. Immutable during a render session.
type Phone struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Image string `yaml:"image,omitempty"` // asset id, resolved by the caller
	Specs []Spec `yaml:"specs"`
}

// SpecValue returns the value of the spec with the given key, and whether it exists.
func (p *Phone) SpecValue(key string) (string, bool) {
	for _, s := range p.Specs {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// SpecLabel returns the label of the spec with the given key, or the key itself.
func (p *Phone) SpecLabel(key string) string {
	for _, s := range p.Specs {
		if s.Key == key {
			return s.Label
		}
	}
	return key
}

// TemplateSection is a named slot whose key determines the scene type by
// naming convention (intro, subintro, score, *camera* -> camera, else body).
type TemplateSection struct {
	Key     string `yaml:"key"`
	Content string `yaml:"content,omitempty"`
}

// Template is the ordered list of sections a comparison script is built from.
type Template struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name,omitempty"`
	Sections []TemplateSection `yaml:"sections"`
}

// Transition describes how a scene enters.
type Transition struct {
	Type       string `yaml:"type"`
	DurationMs int    `yaml:"durationMs,omitempty"`
}

// MediaOverride replaces the phone images used by a scene.
type MediaOverride struct {
	PhoneAImageSrc string `yaml:"phoneAImageSrc,omitempty"`
	PhoneBImageSrc string `yaml:"phoneBImageSrc,omitempty"`
}

// SceneOverride is the sparse user-authored part of a scene. Every field is
// optional; a nil pointer means "fall through to auto or the type default",
// never "disabled".
type SceneOverride struct {
	Enabled    *bool
	DurationMs *int
	Transition *Transition
	Text       map[string]string
	Media      *MediaOverride
	// HasWinnerOverride distinguishes "absent" (use auto) from an explicit
	// winnerOverride key in the document, where an explicit null or empty
	// value means "forced unknown". Set from key presence on unmarshal.
	HasWinnerOverride bool
	WinnerOverride    comparison.Winner
	Elements          []Element
}

// sceneOverrideDoc is the wire shape of SceneOverride. The winner override
// needs presence tracking, which a plain struct field cannot express, so the
// exported struct carries a flag and converts here.
type sceneOverrideDoc struct {
	Enabled        *bool              `yaml:"enabled,omitempty"`
	DurationMs     *int               `yaml:"durationMs,omitempty"`
	Transition     *Transition        `yaml:"transition,omitempty"`
	Text           map[string]string  `yaml:"text,omitempty"`
	Media          *MediaOverride     `yaml:"media,omitempty"`
	WinnerOverride *comparison.Winner `yaml:"winnerOverride,omitempty"`
	Elements       []Element          `yaml:"elements,omitempty"`
}

func (o SceneOverride) MarshalYAML() (interface{}, error) {
	doc := sceneOverrideDoc{
		Enabled:    o.Enabled,
		DurationMs: o.DurationMs,
		Transition: o.Transition,
		Text:       o.Text,
		Media:      o.Media,
		Elements:   o.Elements,
	}
	if o.HasWinnerOverride {
		w := o.WinnerOverride
		doc.WinnerOverride = &w
	}
	return doc, nil
}

func (o *SceneOverride) UnmarshalYAML(value *yaml.Node) error {
	var doc sceneOverrideDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*o = SceneOverride{
		Enabled:    doc.Enabled,
		DurationMs: doc.DurationMs,
		Transition: doc.Transition,
		Text:       doc.Text,
		Media:      doc.Media,
		Elements:   doc.Elements,
	}
	// A present winnerOverride key always takes effect, including an
	// explicit null (forced unknown), which decodes to a nil pointer.
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "winnerOverride" {
			o.HasWinnerOverride = true
			if doc.WinnerOverride != nil {
				o.WinnerOverride = *doc.WinnerOverride
			}
			break
		}
	}
	return nil
}

// AudioTrack schedules one audio source on the export timeline.
type AudioTrack struct {
	SourceRef     string  `yaml:"sourceRef"`
	StartOffsetMs int     `yaml:"startOffsetMs"`
	DurationMs    int     `yaml:"durationMs,omitempty"` // 0 = play to natural end
	Volume        float64 `yaml:"volume"`
	Loop          bool    `yaml:"loop,omitempty"`
}

// PreviewSettings tune the interactive preview only; export ignores them.
type PreviewSettings struct {
	Speed    float64 `yaml:"speed,omitempty"`
	Autoplay bool    `yaml:"autoplay,omitempty"`
}

// Project ties a template, two phones and the comparison rules together with
// the user's per-scene overrides. Overrides are the only scene state that
// persists long-term; auto data is regenerated from the inputs.
type Project struct {
	ID                  string                   `yaml:"id"`
	Name                string                   `yaml:"name,omitempty"`
	Template            Template                 `yaml:"template"`
	PhoneA              Phone                    `yaml:"phoneA"`
	PhoneB              Phone                    `yaml:"phoneB"`
	Rules               []comparison.Rule        `yaml:"rules,omitempty"`
	Overrides           map[string]SceneOverride `yaml:"overrides,omitempty"` // keyed by scene id / section key
	AspectRatioOverride string                   `yaml:"aspectRatioOverride,omitempty"`
	Preview             *PreviewSettings         `yaml:"previewSettings,omitempty"`
	Audio               []AudioTrack             `yaml:"audio,omitempty"`
	BackgroundColor     string                   `yaml:"backgroundColor,omitempty"` // #rrggbb, default black
	BackgroundImage     string                   `yaml:"backgroundImage,omitempty"` // asset id
	ShareURL            string                   `yaml:"shareUrl,omitempty"`        // rendered as QR on score scenes
}

// RuleFor finds the rule matching a section key, by specKey first, then by id.
func (p *Project) RuleFor(key string) *comparison.Rule {
	for i := range p.Rules {
		if p.Rules[i].SpecKey == key {
			return &p.Rules[i]
		}
	}
	for i := range p.Rules {
		if p.Rules[i].ID == key {
			return &p.Rules[i]
		}
	}
	return nil
}
