// Package compositor turns one (scene, elapsed-time) pair into pixels on a
// raster surface. Rendering is split into two phases: Prefetch awaits and
// decodes every referenced asset, then Render runs a fully synchronous,
// deterministic composite pass over the decoded map — identical arguments
// always produce identical pixels, which frame-accurate export relies on.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/versus2video/internal/project"
	"github.com/ivlev/versus2video/internal/scene"
)

// Compositor rasterizes scenes. It caches font faces between frames and is
// meant to be used from one goroutine (the frame loop).
type Compositor struct {
	faces map[int]font.Face
}

func New() *Compositor {
	return &Compositor{faces: make(map[int]font.Face)}
}

// Render composites a scene at the given intra-scene time onto dst. The
// surface is fully overwritten: clear, background, then the scene elements
// in ascending z-index order. All geometry is authored in the 1920x1080
// logical space and scaled to the surface size here.
func (c *Compositor) Render(dst *image.RGBA, p *project.Project, s *scene.Scene, elapsedMs float64, assets AssetMap) {
	eff := scene.Resolve(s)
	c.RenderEffective(dst, p, &eff, elapsedMs, assets)
}

// RenderEffective is Render for an already resolved scene.
func (c *Compositor) RenderEffective(dst *image.RGBA, p *project.Project, eff *scene.Effective, elapsedMs float64, assets AssetMap) {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	scaleX := float64(w) / scene.LogicalWidth
	scaleY := float64(h) / scene.LogicalHeight

	// Фон: сплошной цвет (по умолчанию чёрный) или фоновое изображение.
	bg := parseHexColor(p.BackgroundColor, color.RGBA{A: 255})
	draw.Draw(dst, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	if p.BackgroundImage != "" {
		if img, ok := assets[p.BackgroundImage]; ok {
			drawFitted(dst, bounds, img, project.FitCover)
		}
	}

	// Стабильная сортировка по z-index сохраняет авторский порядок
	// элементов с одинаковым индексом.
	elements := make([]project.Element, len(eff.Elements))
	copy(elements, eff.Elements)
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].ZIndex < elements[j].ZIndex
	})

	for i := range elements {
		el := &elements[i]
		if el.Hidden {
			continue
		}
		c.drawElement(dst, el, eff, assets, scaleX, scaleY)
	}

	if eff.Type == scene.TypeScore && p.ShareURL != "" {
		c.drawShareQR(dst, p.ShareURL, scaleX, scaleY)
	}

	drawTransition(dst, eff, bg, elapsedMs)
}

// drawTransition applies the scene's enter transition. Only "fade" draws
// anything: the background color covers the frame and dissolves over the
// transition window.
func drawTransition(dst *image.RGBA, eff *scene.Effective, bg color.RGBA, elapsedMs float64) {
	if eff.Transition.Type != "fade" || eff.Transition.DurationMs <= 0 {
		return
	}
	if elapsedMs >= float64(eff.Transition.DurationMs) {
		return
	}

	progress := elapsedMs / float64(eff.Transition.DurationMs)
	alpha := uint8(math.Round((1 - progress) * 255))
	if alpha == 0 {
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, mask, image.Point{}, draw.Over)
}

// drawElement renders one element into its own layer, then composites the
// layer onto the surface with the element's opacity and rotation. The layer
// indirection keeps the shared surface untouched until the element is
// complete — one writer at a time.
func (c *Compositor) drawElement(dst *image.RGBA, el *project.Element, eff *scene.Effective, assets AssetMap, scaleX, scaleY float64) {
	rect := deviceRect(el, scaleX, scaleY)
	if rect.Empty() {
		return
	}

	layer := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))

	switch el.Kind {
	case project.ElementBox:
		c.drawBox(layer, el, scaleX)
	case project.ElementImage:
		src := EffectiveSource(el, eff)
		if img, ok := assets[src]; ok {
			drawFitted(layer, layer.Bounds(), img, el.Fit)
		} else {
			drawPlaceholder(layer)
		}
	case project.ElementText:
		c.drawText(layer, el, eff, scaleX, scaleY)
	}

	compositeLayer(dst, layer, rect, el.EffectiveOpacity(), el.Rotation)
}

func (c *Compositor) drawBox(layer *image.RGBA, el *project.Element, scale float64) {
	fill := parseHexColor(el.Fill, color.RGBA{R: 32, G: 32, B: 32, A: 255})
	draw.Draw(layer, layer.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)

	if el.Border == "" || el.BorderWidth <= 0 {
		return
	}
	border := parseHexColor(el.Border, color.RGBA{A: 255})
	bw := int(math.Round(el.BorderWidth * scale))
	if bw < 1 {
		bw = 1
	}
	b := layer.Bounds()
	borderSrc := image.NewUniform(border)
	draw.Draw(layer, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+bw), borderSrc, image.Point{}, draw.Src)
	draw.Draw(layer, image.Rect(b.Min.X, b.Max.Y-bw, b.Max.X, b.Max.Y), borderSrc, image.Point{}, draw.Src)
	draw.Draw(layer, image.Rect(b.Min.X, b.Min.Y, b.Min.X+bw, b.Max.Y), borderSrc, image.Point{}, draw.Src)
	draw.Draw(layer, image.Rect(b.Max.X-bw, b.Min.Y, b.Max.X, b.Max.Y), borderSrc, image.Point{}, draw.Src)
}

func (c *Compositor) drawText(layer *image.RGBA, el *project.Element, eff *scene.Effective, scaleX, scaleY float64) {
	if el.Background != "" {
		chip := parseHexColor(el.Background, color.RGBA{R: 28, G: 28, B: 40, A: 255})
		draw.Draw(layer, layer.Bounds(), image.NewUniform(chip), image.Point{}, draw.Src)
	}

	content := substituteTokens(el.Content, eff)
	if content == "" {
		return
	}

	size := el.FontSize
	if size <= 0 {
		size = 48
	}
	face := c.face(size * scaleY)
	if face == nil {
		return
	}

	col := parseHexColor(el.Color, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	b := layer.Bounds()
	width := fixed.I(b.Dx())
	advance := font.MeasureString(face, content)

	var x fixed.Int26_6
	switch el.Align {
	case project.AlignRight:
		x = width - advance
	case project.AlignLeft:
		x = 0
	default:
		x = (width - advance) / 2
	}
	if x < 0 {
		x = 0
	}

	metrics := face.Metrics()
	baseline := (fixed.I(b.Dy()) + metrics.Ascent - metrics.Descent) / 2

	d := font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: baseline},
	}
	d.DrawString(content)
}

// drawShareQR paints the share-link QR chip in the lower right corner of
// score scenes.
func (c *Compositor) drawShareQR(dst *image.RGBA, url string, scaleX, scaleY float64) {
	const logicalSize = 180
	size := int(math.Round(logicalSize * scaleY))
	if size < 21 {
		return
	}

	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return
	}
	qr.DisableBorder = true
	img := qr.Image(size)

	margin := int(math.Round(40 * scaleY))
	b := dst.Bounds()
	target := image.Rect(b.Max.X-margin-size, b.Max.Y-margin-size, b.Max.X-margin, b.Max.Y-margin)
	draw.Draw(dst, target, img, img.Bounds().Min, draw.Over)
}

// compositeLayer draws a finished element layer onto the surface, applying
// opacity and rotation around the element center.
func compositeLayer(dst *image.RGBA, layer *image.RGBA, rect image.Rectangle, opacity, rotationDeg float64) {
	if opacity <= 0 {
		return
	}

	if rotationDeg == 0 {
		if opacity >= 1 {
			draw.Draw(dst, rect, layer, image.Point{}, draw.Over)
			return
		}
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
		draw.DrawMask(dst, rect, layer, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}

	if opacity < 1 {
		applyOpacity(layer, opacity)
	}

	rad := rotationDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(rect.Min.X) + float64(rect.Dx())/2
	cy := float64(rect.Min.Y) + float64(rect.Dy())/2
	lw := float64(layer.Bounds().Dx()) / 2
	lh := float64(layer.Bounds().Dy()) / 2

	// Слой поворачивается вокруг своего центра и переносится в центр
	// целевого прямоугольника.
	m := f64.Aff3{
		cos, -sin, cx - cos*lw + sin*lh,
		sin, cos, cy - sin*lw - cos*lh,
	}
	xdraw.BiLinear.Transform(dst, m, layer, layer.Bounds(), xdraw.Over, nil)
}

// applyOpacity scales all four premultiplied channels in place.
func applyOpacity(img *image.RGBA, opacity float64) {
	for i := range img.Pix {
		img.Pix[i] = uint8(math.Round(float64(img.Pix[i]) * opacity))
	}
}

// drawFitted draws src into rect using the cover/contain fit rules: cover
// crops a centered source sub-rectangle, contain letterboxes a centered
// destination sub-rectangle. Neither distorts the source aspect ratio.
func drawFitted(dst *image.RGBA, rect image.Rectangle, src image.Image, fit project.ImageFit) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || rect.Empty() {
		return
	}

	srcAspect := float64(sb.Dx()) / float64(sb.Dy())
	dstAspect := float64(rect.Dx()) / float64(rect.Dy())

	srcRect := sb
	dstRect := rect

	if fit == project.FitContain {
		if srcAspect > dstAspect {
			// Источник шире: подгоняем по ширине, центрируем по высоте.
			newH := int(math.Round(float64(rect.Dx()) / srcAspect))
			offset := (rect.Dy() - newH) / 2
			dstRect = image.Rect(rect.Min.X, rect.Min.Y+offset, rect.Max.X, rect.Min.Y+offset+newH)
		} else {
			newW := int(math.Round(float64(rect.Dy()) * srcAspect))
			offset := (rect.Dx() - newW) / 2
			dstRect = image.Rect(rect.Min.X+offset, rect.Min.Y, rect.Min.X+offset+newW, rect.Max.Y)
		}
	} else {
		// cover: вырезаем из источника прямоугольник с пропорциями цели.
		if srcAspect > dstAspect {
			newW := int(math.Round(float64(sb.Dy()) * dstAspect))
			offset := (sb.Dx() - newW) / 2
			srcRect = image.Rect(sb.Min.X+offset, sb.Min.Y, sb.Min.X+offset+newW, sb.Max.Y)
		} else {
			newH := int(math.Round(float64(sb.Dx()) / dstAspect))
			offset := (sb.Dy() - newH) / 2
			srcRect = image.Rect(sb.Min.X, sb.Min.Y+offset, sb.Max.X, sb.Min.Y+offset+newH)
		}
	}

	xdraw.ApproxBiLinear.Scale(dst, dstRect, src, srcRect, xdraw.Over, nil)
}

// drawPlaceholder fills an image element whose asset is unavailable with a
// grey cross-hatch.
func drawPlaceholder(layer *image.RGBA) {
	b := layer.Bounds()
	base := color.RGBA{R: 120, G: 120, B: 120, A: 255}
	hatch := color.RGBA{R: 90, G: 90, B: 90, A: 255}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x+y)%24 < 3 || (x-y+b.Max.Y)%24 < 3 {
				layer.SetRGBA(x, y, hatch)
			} else {
				layer.SetRGBA(x, y, base)
			}
		}
	}
}

func deviceRect(el *project.Element, scaleX, scaleY float64) image.Rectangle {
	x0 := int(math.Round(el.X * scaleX))
	y0 := int(math.Round(el.Y * scaleY))
	x1 := int(math.Round((el.X + el.Width) * scaleX))
	y1 := int(math.Round((el.Y + el.Height) * scaleY))
	return image.Rect(x0, y0, x1, y1)
}

// parseHexColor parses #rgb and #rrggbb values, falling back to def.
func parseHexColor(s string, def color.RGBA) color.RGBA {
	if len(s) == 0 || s[0] != '#' {
		return def
	}
	hex := s[1:]

	var r, g, b uint8
	switch len(hex) {
	case 3:
		r = hexNibble(hex[0]) * 17
		g = hexNibble(hex[1]) * 17
		b = hexNibble(hex[2]) * 17
	case 6:
		r = hexNibble(hex[0])<<4 | hexNibble(hex[1])
		g = hexNibble(hex[2])<<4 | hexNibble(hex[3])
		b = hexNibble(hex[4])<<4 | hexNibble(hex[5])
	default:
		return def
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
