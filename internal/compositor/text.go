package compositor

import (
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/versus2video/internal/comparison"
	"github.com/ivlev/versus2video/internal/scene"
)

var (
	fontOnce   sync.Once
	fontParsed *opentype.Font
)

// loadFont parses the embedded Go Regular face once. An embedded font keeps
// text rendering byte-identical across machines.
func loadFont() *opentype.Font {
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			// Шрифт вшит в бинарник, ошибка возможна только при порче сборки.
			log.Printf("[!] Не удалось разобрать встроенный шрифт: %v", err)
			return
		}
		fontParsed = f
	})
	return fontParsed
}

// face returns a cached font.Face for the given pixel size.
func (c *Compositor) face(sizePx float64) font.Face {
	if sizePx < 4 {
		sizePx = 4
	}
	key := int(sizePx + 0.5)
	if f, ok := c.faces[key]; ok {
		return f
	}

	parsed := loadFont()
	if parsed == nil {
		return nil
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[!] Не удалось создать начертание %dpx: %v", key, err)
		return nil
	}
	c.faces[key] = f
	return f
}

// substituteTokens resolves {{placeholder}} tokens against the effective
// scene. The winner token always reflects the effective winner, including a
// manual override and the forced-unknown state.
func substituteTokens(content string, eff *scene.Effective) string {
	if !strings.Contains(content, "{{") {
		return content
	}

	// The winner token goes first: it must reflect the effective winner,
	// not the raw auto placeholder that may also sit in the text map. The
	// remaining keys run in sorted order so an override value that itself
	// contains a token always expands the same way.
	out := strings.ReplaceAll(content, "{{winner}}", winnerText(eff))
	keys := make([]string, 0, len(eff.Text))
	for key := range eff.Text {
		if key != "winner" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		out = strings.ReplaceAll(out, "{{"+key+"}}", eff.Text[key])
	}
	return out
}

func winnerText(eff *scene.Effective) string {
	switch eff.Winner {
	case comparison.WinnerA:
		if name := eff.Text["phoneA"]; name != "" {
			return name
		}
		return "A"
	case comparison.WinnerB:
		if name := eff.Text["phoneB"]; name != "" {
			return name
		}
		return "B"
	case comparison.WinnerTie:
		return "Tie"
	default:
		return "—"
	}
}
