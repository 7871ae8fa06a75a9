package project

// ElementKind discriminates the scene element union.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
	ElementBox   ElementKind = "box"
)

// ImageFit selects how an image fills its element rectangle.
type ImageFit string

const (
	FitCover   ImageFit = "cover"
	FitContain ImageFit = "contain"
)

// TextAlign is the horizontal alignment of a text element.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Element is one drawable item of a scene layout, a tagged union over
// text/image/box. Geometry is expressed in the fixed 1920x1080 logical space
// and scaled to the target resolution at composite time. An element belongs
// to exactly one scene.
type Element struct {
	Kind ElementKind `yaml:"kind"`

	// Shared geometry.
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Width    float64  `yaml:"width"`
	Height   float64  `yaml:"height"`
	ZIndex   int      `yaml:"zIndex,omitempty"`
	Opacity  *float64 `yaml:"opacity,omitempty"`  // nil means fully opaque; 0 is fully transparent
	Rotation float64  `yaml:"rotation,omitempty"` // degrees, around the element center
	Hidden   bool     `yaml:"hidden,omitempty"`
	Locked   bool     `yaml:"locked,omitempty"`

	// Text variant.
	Content    string    `yaml:"content,omitempty"` // may embed {{placeholder}} tokens
	FontSize   float64   `yaml:"fontSize,omitempty"`
	Color      string    `yaml:"color,omitempty"` // #rrggbb
	Align      TextAlign `yaml:"align,omitempty"`
	Background string    `yaml:"background,omitempty"` // optional chip behind the text

	// Image variant.
	SourceRef string   `yaml:"sourceRef,omitempty"` // asset id
	Fit       ImageFit `yaml:"fit,omitempty"`
	// Slot binds an image element to a phone side ("phoneA"/"phoneB") so a
	// media override can retarget it without touching the layout.
	Slot string `yaml:"slot,omitempty"`

	// Box variant.
	Fill        string  `yaml:"fill,omitempty"`
	Border      string  `yaml:"border,omitempty"`
	BorderWidth float64 `yaml:"borderWidth,omitempty"`
}

// EffectiveOpacity maps an unset opacity to fully opaque and clamps to [0,1].
func (e *Element) EffectiveOpacity() float64 {
	if e.Opacity == nil {
		return 1
	}
	if *e.Opacity < 0 {
		return 0
	}
	if *e.Opacity > 1 {
		return 1
	}
	return *e.Opacity
}
