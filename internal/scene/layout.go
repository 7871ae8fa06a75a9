package scene

import (
	"github.com/ivlev/versus2video/internal/project"
)

// Logical reference resolution. Element geometry is authored in this space
// and scaled to the export/preview resolution by the compositor.
const (
	LogicalWidth  = 1920
	LogicalHeight = 1080
)

// DefaultLayout builds the deterministic per-type element layout used when a
// scene carries no user-authored layout. Text content uses {{placeholder}}
// tokens resolved at composite time, so the layout itself never has to be
// regenerated when auto data changes.
func DefaultLayout(s *Scene, p *project.Project) []project.Element {
	switch s.Type {
	case TypeIntro:
		return introLayout(p)
	case TypeSubintro:
		return subintroLayout()
	case TypeScore:
		return scoreLayout()
	case TypeCamera:
		return versusLayout(p, 180, 760, 560)
	default:
		return versusLayout(p, 220, 680, 520)
	}
}

func introLayout(p *project.Project) []project.Element {
	return []project.Element{
		{
			Kind: project.ElementText, Content: "{{title}}",
			X: 160, Y: 80, Width: 1600, Height: 140,
			FontSize: 96, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 10,
		},
		{
			Kind: project.ElementImage, SourceRef: p.PhoneA.Image, Slot: "phoneA",
			Fit: project.FitContain,
			X:   240, Y: 280, Width: 480, Height: 620, ZIndex: 5,
		},
		{
			Kind: project.ElementImage, SourceRef: p.PhoneB.Image, Slot: "phoneB",
			Fit: project.FitContain,
			X:   1200, Y: 280, Width: 480, Height: 620, ZIndex: 5,
		},
		{
			Kind: project.ElementText, Content: "VS",
			X: 860, Y: 500, Width: 200, Height: 120,
			FontSize: 110, Color: "#ffd24a", Align: project.AlignCenter, ZIndex: 8,
		},
		{
			Kind: project.ElementText, Content: "{{phoneA}}",
			X: 240, Y: 930, Width: 480, Height: 70,
			FontSize: 48, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 6,
		},
		{
			Kind: project.ElementText, Content: "{{phoneB}}",
			X: 1200, Y: 930, Width: 480, Height: 70,
			FontSize: 48, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 6,
		},
	}
}

func subintroLayout() []project.Element {
	return []project.Element{
		{
			Kind: project.ElementBox, Fill: "#1c1c28",
			X: 360, Y: 420, Width: 1200, Height: 240, ZIndex: 2,
		},
		{
			Kind: project.ElementText, Content: "{{title}}",
			X: 360, Y: 470, Width: 1200, Height: 140,
			FontSize: 84, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 5,
		},
	}
}

// versusLayout is shared by body and camera scenes; camera scenes get larger
// imagery and a tighter header.
func versusLayout(p *project.Project, imgY, imgH, imgW float64) []project.Element {
	return []project.Element{
		{
			Kind: project.ElementText, Content: "{{title}}",
			X: 160, Y: 50, Width: 1600, Height: 110,
			FontSize: 72, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 10,
		},
		{
			Kind: project.ElementImage, SourceRef: p.PhoneA.Image, Slot: "phoneA",
			Fit: project.FitContain,
			X:   180, Y: imgY, Width: imgW, Height: imgH, ZIndex: 4,
		},
		{
			Kind: project.ElementImage, SourceRef: p.PhoneB.Image, Slot: "phoneB",
			Fit: project.FitContain,
			X:   1920 - 180 - imgW, Y: imgY, Width: imgW, Height: imgH, ZIndex: 4,
		},
		{
			Kind: project.ElementText, Content: "{{valueA}}", Background: "#242436",
			X: 160, Y: 940, Width: 600, Height: 90,
			FontSize: 52, Color: "#9be28a", Align: project.AlignCenter, ZIndex: 7,
		},
		{
			Kind: project.ElementText, Content: "{{valueB}}", Background: "#242436",
			X: 1160, Y: 940, Width: 600, Height: 90,
			FontSize: 52, Color: "#9be28a", Align: project.AlignCenter, ZIndex: 7,
		},
		{
			Kind: project.ElementText, Content: "Winner: {{winner}}",
			X: 760, Y: 950, Width: 400, Height: 70,
			FontSize: 44, Color: "#ffd24a", Align: project.AlignCenter, ZIndex: 9,
		},
	}
}

func scoreLayout() []project.Element {
	return []project.Element{
		{
			Kind: project.ElementText, Content: "{{title}}",
			X: 160, Y: 120, Width: 1600, Height: 140,
			FontSize: 96, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 10,
		},
		{
			Kind: project.ElementBox, Fill: "#1c1c28", Border: "#ffd24a", BorderWidth: 6,
			X: 460, Y: 420, Width: 1000, Height: 260, ZIndex: 2,
		},
		{
			Kind: project.ElementText, Content: "{{phoneA}}  {{scoreA}} : {{scoreB}}  {{phoneB}}",
			X: 460, Y: 490, Width: 1000, Height: 120,
			FontSize: 64, Color: "#ffffff", Align: project.AlignCenter, ZIndex: 5,
		},
		{
			Kind: project.ElementText, Content: "Winner: {{winner}}",
			X: 660, Y: 780, Width: 600, Height: 90,
			FontSize: 56, Color: "#ffd24a", Align: project.AlignCenter, ZIndex: 6,
		},
	}
}
