package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver supplies asset bytes by id. "Not found" is reported as (nil, nil),
// not as an error — consumers treat missing bytes as a recoverable decode
// failure (placeholder raster, skipped audio track).
type Resolver interface {
	Resolve(assetID string) ([]byte, error)
}

// DirResolver resolves asset ids against a base directory. Ids are relative
// paths; anything escaping the base directory resolves to nothing.
type DirResolver struct {
	Base string
}

func NewDirResolver(base string) *DirResolver {
	return &DirResolver{Base: base}
}

func (r *DirResolver) Resolve(assetID string) ([]byte, error) {
	if assetID == "" {
		return nil, nil
	}

	clean := filepath.Clean(assetID)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(r.Base, clean))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// MapResolver serves assets from memory. Used by tests and embedded callers.
type MapResolver map[string][]byte

func (r MapResolver) Resolve(assetID string) ([]byte, error) {
	return r[assetID], nil
}
