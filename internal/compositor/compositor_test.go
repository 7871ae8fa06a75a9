package compositor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ivlev/versus2video/internal/comparison"
	"github.com/ivlev/versus2video/internal/project"
	"github.com/ivlev/versus2video/internal/scene"
)

func encodePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func renderProject() (*project.Project, []scene.Scene) {
	p := &project.Project{
		Template: project.Template{Sections: []project.TemplateSection{
			{Key: "intro", Content: "Test"},
			{Key: "battery"},
			{Key: "score"},
		}},
		PhoneA: project.Phone{Name: "Phone A", Image: "images/a.png",
			Specs: []project.Spec{{Key: "battery", Label: "Battery", Value: "3274 mAh"}}},
		PhoneB: project.Phone{Name: "Phone B", Image: "images/b.png",
			Specs: []project.Spec{{Key: "battery", Label: "Battery", Value: "4000 mAh"}}},
		Rules:    []comparison.Rule{{SpecKey: "battery", Type: comparison.RuleHigherWins}},
		ShareURL: "https://example.com/vs/1",
	}
	return p, scene.Generate(p)
}

// Rendering the same (scene, t) twice with identical assets must yield
// byte-identical pixel buffers.
func TestRenderDeterministic(t *testing.T) {
	p, scenes := renderProject()
	res := project.MapResolver{
		"images/a.png": encodePNG(t, color.RGBA{R: 200, A: 255}),
		"images/b.png": encodePNG(t, color.RGBA{B: 200, A: 255}),
	}

	c := New()
	for i := range scenes {
		eff := scene.Resolve(&scenes[i])
		assets := Prefetch(context.Background(), &eff, p, res)

		first := image.NewRGBA(image.Rect(0, 0, 192, 108))
		second := image.NewRGBA(image.Rect(0, 0, 192, 108))
		c.Render(first, p, &scenes[i], 700, assets)
		c.Render(second, p, &scenes[i], 700, assets)

		if !bytes.Equal(first.Pix, second.Pix) {
			t.Errorf("scene %q: two renders differ", scenes[i].ID)
		}
	}
}

// A missing asset degrades to the placeholder, never to an error or an
// untouched surface.
func TestRenderMissingAssetPlaceholder(t *testing.T) {
	p, scenes := renderProject()
	res := project.MapResolver{} // no assets at all

	body := &scenes[1]
	eff := scene.Resolve(body)
	assets := Prefetch(context.Background(), &eff, p, res)
	if len(assets) != 0 {
		t.Fatalf("expected empty asset map, got %d entries", len(assets))
	}

	dst := image.NewRGBA(image.Rect(0, 0, 192, 108))
	c := New()
	c.Render(dst, p, body, 0, assets)

	// The phone image regions must contain the grey placeholder hatch.
	found := false
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] == 120 && dst.Pix[i+1] == 120 && dst.Pix[i+2] == 120 {
			found = true
			break
		}
	}
	if !found {
		t.Error("placeholder pixels not found for missing asset")
	}
}

func TestRenderTextOverrideChangesPixels(t *testing.T) {
	p, scenes := renderProject()
	body := scenes[1]

	c := New()
	base := image.NewRGBA(image.Rect(0, 0, 384, 216))
	c.Render(base, p, &body, 0, AssetMap{})

	override := body
	override.Override = &project.SceneOverride{
		Text: map[string]string{"title": "Совсем другой заголовок"},
	}
	changed := image.NewRGBA(image.Rect(0, 0, 384, 216))
	c.Render(changed, p, &override, 0, AssetMap{})

	if bytes.Equal(base.Pix, changed.Pix) {
		t.Error("text override did not change the rendered frame")
	}
}

func TestEffectiveSourceMediaOverride(t *testing.T) {
	el := &project.Element{Kind: project.ElementImage, SourceRef: "images/a.png", Slot: "phoneA"}
	eff := &scene.Effective{Media: &project.MediaOverride{PhoneAImageSrc: "images/custom.png"}}

	if got := EffectiveSource(el, eff); got != "images/custom.png" {
		t.Errorf("expected media override source, got %q", got)
	}

	elB := &project.Element{Kind: project.ElementImage, SourceRef: "images/b.png", Slot: "phoneB"}
	if got := EffectiveSource(elB, eff); got != "images/b.png" {
		t.Errorf("unset slot must fall back to the layout source, got %q", got)
	}
}

func TestPrefetchSkipsUndecodableAsset(t *testing.T) {
	p, scenes := renderProject()
	res := project.MapResolver{
		"images/a.png": []byte("definitely not an image"),
		"images/b.png": encodePNG(t, color.RGBA{B: 200, A: 255}),
	}

	eff := scene.Resolve(&scenes[1])
	assets := Prefetch(context.Background(), &eff, p, res)

	if _, ok := assets["images/a.png"]; ok {
		t.Error("undecodable asset must be skipped")
	}
	if _, ok := assets["images/b.png"]; !ok {
		t.Error("valid asset lost because a sibling failed to decode")
	}
}

// An element with an explicit zero opacity must leave the surface untouched.
func TestRenderZeroOpacityElement(t *testing.T) {
	p, scenes := renderProject()
	body := scenes[1]

	c := New()
	base := image.NewRGBA(image.Rect(0, 0, 192, 108))
	c.Render(base, p, &body, 0, AssetMap{})

	transparent := body
	zero := 0.0
	elements := make([]project.Element, len(body.Elements))
	copy(elements, body.Elements)
	elements = append(elements, project.Element{
		Kind: project.ElementBox, Fill: "#ff0000", Opacity: &zero,
		X: 0, Y: 0, Width: 1920, Height: 1080, ZIndex: 99,
	})
	transparent.Override = &project.SceneOverride{Elements: elements}

	dst := image.NewRGBA(image.Rect(0, 0, 192, 108))
	c.Render(dst, p, &transparent, 0, AssetMap{})

	if !bytes.Equal(base.Pix, dst.Pix) {
		t.Error("zero-opacity element changed the rendered frame")
	}
}

// Token expansion must not depend on map iteration order, even when an
// override value itself contains another token.
func TestSubstituteTokensNestedDeterministic(t *testing.T) {
	eff := &scene.Effective{
		Text: map[string]string{
			"alpha": "{{beta}}",
			"beta":  "X",
		},
	}

	first := substituteTokens("{{alpha}} {{beta}}", eff)
	if first != "X X" {
		t.Errorf("nested expansion: expected %q, got %q", "X X", first)
	}
	for i := 0; i < 50; i++ {
		if got := substituteTokens("{{alpha}} {{beta}}", eff); got != first {
			t.Fatalf("expansion changed between runs: %q vs %q", first, got)
		}
	}
}

func TestSubstituteTokensUsesEffectiveWinner(t *testing.T) {
	eff := &scene.Effective{
		Winner: comparison.WinnerA,
		Text: map[string]string{
			"phoneA": "Phone A",
			"phoneB": "Phone B",
			"winner": "B", // stale auto placeholder must not leak through
		},
	}

	got := substituteTokens("Winner: {{winner}}", eff)
	if got != "Winner: Phone A" {
		t.Errorf("expected effective winner substitution, got %q", got)
	}

	eff.Winner = ""
	if got := substituteTokens("{{winner}}", eff); got != "—" {
		t.Errorf("forced unknown winner: expected dash, got %q", got)
	}
}
