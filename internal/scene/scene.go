package scene

import (
	"strings"

	"github.com/ivlev/versus2video/internal/comparison"
	"github.com/ivlev/versus2video/internal/project"
)

// Type classifies a scene by its template section key.
type Type string

const (
	TypeIntro    Type = "intro"
	TypeSubintro Type = "subintro"
	TypeBody     Type = "body"
	TypeCamera   Type = "camera"
	TypeScore    Type = "score"
)

// ClassifyKey maps a template section key onto a scene type by convention.
func ClassifyKey(key string) Type {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == "intro":
		return TypeIntro
	case k == "subintro":
		return TypeSubintro
	case k == "score":
		return TypeScore
	case strings.Contains(k, "camera"):
		return TypeCamera
	default:
		return TypeBody
	}
}

// AutoData is the derived, regenerable half of a scene.
type AutoData struct {
	Placeholders map[string]string
	SpecKey      string
	SpecA        string
	SpecB        string
	Winner       comparison.Winner
	ScoreA       int
	ScoreB       int
}

// Scene is one segment of the comparison timeline. Auto is derived and
// replaceable on every regeneration; Override is user-authored and sparse.
type Scene struct {
	ID       string
	Type     Type
	Label    string
	Auto     AutoData
	Override *project.SceneOverride
	// Elements is the scene layout in logical 1920x1080 coordinates. User
	// layouts (carried on the override) win over the generated default.
	Elements []project.Element
}
