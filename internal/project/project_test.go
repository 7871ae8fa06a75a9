package project

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/versus2video/internal/comparison"
)

func sampleProject() *Project {
	enabled := false
	dur := 4000
	return &Project{
		ID:   "p1",
		Name: "Flagship battle",
		Template: Template{
			ID: "t1",
			Sections: []TemplateSection{
				{Key: "intro", Content: "Сравнение"},
				{Key: "battery"},
				{Key: "score"},
			},
		},
		PhoneA: Phone{ID: "a", Name: "Phone A", Specs: []Spec{
			{Key: "battery", Label: "Battery", Value: "3274 mAh"},
		}},
		PhoneB: Phone{ID: "b", Name: "Phone B", Specs: []Spec{
			{Key: "battery", Label: "Battery", Value: "4000 mAh"},
		}},
		Rules: []comparison.Rule{
			{SpecKey: "battery", Type: comparison.RuleHigherWins},
		},
		Overrides: map[string]SceneOverride{
			"battery": {
				Enabled:           &enabled,
				DurationMs:        &dur,
				Text:              map[string]string{"title": "Аккумулятор"},
				HasWinnerOverride: true,
				WinnerOverride:    comparison.WinnerA,
			},
		},
		Audio: []AudioTrack{
			{SourceRef: "audio/music.mp3", Volume: 0.8, Loop: true},
		},
		BackgroundColor: "#101018",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := Save(sampleProject(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != "Flagship battle" || len(loaded.Template.Sections) != 3 {
		t.Errorf("template lost in round trip: %+v", loaded.Template)
	}
	if v, ok := loaded.PhoneB.SpecValue("battery"); !ok || v != "4000 mAh" {
		t.Errorf("phone specs lost: %q", v)
	}

	ov, ok := loaded.Overrides["battery"]
	if !ok {
		t.Fatal("override lost in round trip")
	}
	if ov.Enabled == nil || *ov.Enabled {
		t.Error("enabled override lost")
	}
	if ov.DurationMs == nil || *ov.DurationMs != 4000 {
		t.Error("duration override lost")
	}
	if !ov.HasWinnerOverride || ov.WinnerOverride != comparison.WinnerA {
		t.Errorf("winner override lost: %v %q", ov.HasWinnerOverride, ov.WinnerOverride)
	}

	if len(loaded.Audio) != 1 || !loaded.Audio[0].Loop || loaded.Audio[0].Volume != 0.8 {
		t.Errorf("audio tracks lost: %+v", loaded.Audio)
	}
}

// An absent override field must stay nil after a round trip, not collapse to
// the zero value.
func TestLoadSparseOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	p := sampleProject()
	p.Overrides = map[string]SceneOverride{
		"battery": {Text: map[string]string{"title": "X"}},
	}
	if err := Save(p, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ov := loaded.Overrides["battery"]
	if ov.Enabled != nil || ov.DurationMs != nil || ov.HasWinnerOverride {
		t.Errorf("sparse override grew concrete fields: %+v", ov)
	}
}

// The persisted winner override is keyed on presence alone: a bare
// `winnerOverride: A` takes effect without any companion flag, and an
// explicit null means "forced unknown".
func TestWinnerOverridePresence(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		present  bool
		expected comparison.Winner
	}{
		{"value", "winnerOverride: A\n", true, comparison.WinnerA},
		{"explicit null", "winnerOverride: null\n", true, ""},
		{"empty string", "winnerOverride: \"\"\n", true, ""},
		{"absent", "durationMs: 2000\n", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ov SceneOverride
			if err := yaml.Unmarshal([]byte(tt.doc), &ov); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if ov.HasWinnerOverride != tt.present || ov.WinnerOverride != tt.expected {
				t.Errorf("got present=%v winner=%q, expected present=%v winner=%q",
					ov.HasWinnerOverride, ov.WinnerOverride, tt.present, tt.expected)
			}
		})
	}
}

// Forced unknown must survive a save/load cycle.
func TestWinnerOverrideForcedUnknownRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	p := sampleProject()
	p.Overrides = map[string]SceneOverride{
		"battery": {HasWinnerOverride: true},
	}
	if err := Save(p, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ov := loaded.Overrides["battery"]
	if !ov.HasWinnerOverride || ov.WinnerOverride != "" {
		t.Errorf("forced unknown lost: present=%v winner=%q", ov.HasWinnerOverride, ov.WinnerOverride)
	}
}

func TestRuleFor(t *testing.T) {
	p := sampleProject()
	p.Rules = append(p.Rules, comparison.Rule{ID: "display", SpecKey: "screen", Type: comparison.RuleHigherWins})

	if r := p.RuleFor("battery"); r == nil || r.SpecKey != "battery" {
		t.Error("specKey match failed")
	}
	// Falls back to the rule id when no specKey matches the section key.
	if r := p.RuleFor("display"); r == nil || r.SpecKey != "screen" {
		t.Error("id match failed")
	}
	if r := p.RuleFor("nonexistent"); r != nil {
		t.Errorf("expected nil for unknown key, got %+v", r)
	}
}

func TestDirResolver(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "a.png"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	r := NewDirResolver(base)

	data, err := r.Resolve("a.png")
	if err != nil || len(data) != 3 {
		t.Errorf("Resolve: %v, %d bytes", err, len(data))
	}

	// Missing file is (nil, nil), not an error.
	data, err = r.Resolve("missing.png")
	if err != nil || data != nil {
		t.Errorf("missing asset: %v, %v", data, err)
	}

	// Escaping the base directory resolves to nothing.
	for _, id := range []string{"../secret", "/etc/passwd", "x/../../y"} {
		if data, err := r.Resolve(id); err != nil || data != nil {
			t.Errorf("escape %q not blocked: %v, %v", id, data, err)
		}
	}
}
