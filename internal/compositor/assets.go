package compositor

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/versus2video/internal/project"
	"github.com/ivlev/versus2video/internal/scene"
)

// AssetMap holds the decoded images of one scene, keyed by asset id. A
// missing entry means the asset failed to resolve or decode — the raster
// pass draws a placeholder instead.
type AssetMap map[string]image.Image

// Prefetch resolves and decodes every asset a scene references, concurrently
// per asset. This is the only stage that waits on external bytes: the raster
// pass that follows is fully synchronous, so concurrent decodes can never
// interleave with drawing state.
//
// Ошибки декодирования не фатальны: ресурс пропускается с записью в лог.
func Prefetch(ctx context.Context, eff *scene.Effective, p *project.Project, res project.Resolver) AssetMap {
	ids := collectAssetIDs(eff, p)

	assets := make(AssetMap, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			img := decodeAsset(res, id)
			if img == nil {
				return nil
			}
			mu.Lock()
			assets[id] = img
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return assets
}

// collectAssetIDs lists the unique asset ids of a scene: every image
// element's effective source plus the project background image.
func collectAssetIDs(eff *scene.Effective, p *project.Project) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	add(p.BackgroundImage)
	for i := range eff.Elements {
		el := &eff.Elements[i]
		if el.Kind == project.ElementImage && !el.Hidden {
			add(EffectiveSource(el, eff))
		}
	}
	return ids
}

// EffectiveSource picks the image source of an element, letting a media
// override retarget phone slots without touching the layout.
func EffectiveSource(el *project.Element, eff *scene.Effective) string {
	if eff.Media != nil {
		switch el.Slot {
		case "phoneA":
			if eff.Media.PhoneAImageSrc != "" {
				return eff.Media.PhoneAImageSrc
			}
		case "phoneB":
			if eff.Media.PhoneBImageSrc != "" {
				return eff.Media.PhoneBImageSrc
			}
		}
	}
	return el.SourceRef
}

func decodeAsset(res project.Resolver, id string) image.Image {
	data, err := res.Resolve(id)
	if err != nil {
		log.Printf("[!] Ошибка загрузки ресурса %s: %v", id, err)
		return nil
	}
	if len(data) == 0 {
		log.Printf("[!] Ресурс %s не найден", id)
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("[!] Ошибка декодирования ресурса %s: %v", id, err)
		return nil
	}
	return img
}
