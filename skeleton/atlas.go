package skeleton

import (
	"fmt"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"
)

// AtlasPage is one texture of an atlas. Texture may be nil when no texture
// loader was supplied.
type AtlasPage struct {
	Name    string
	File    string
	Width   int
	Height  int
	Texture *ebiten.Image
}

// AtlasRegion is a named rectangle on a page with normalised texture
// coordinates (U, V) top-left to (U2, V2) bottom-right.
type AtlasRegion struct {
	Name   string
	Page   *AtlasPage
	X, Y   int
	Width  int
	Height int
	U, V   float32
	U2, V2 float32
}

type Atlas struct {
	Pages   []*AtlasPage
	Regions []*AtlasRegion
}

// FindRegion returns the region with the given name or nil.
func (a *Atlas) FindRegion(name string) *AtlasRegion {
	if a == nil {
		return nil
	}
	for _, r := range a.Regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

type AtlasSpec struct {
	Pages []AtlasPageSpec `yaml:"pages"`
}

type AtlasPageSpec struct {
	Name    string            `yaml:"name"`
	File    string            `yaml:"file"`
	Width   int               `yaml:"width"`
	Height  int               `yaml:"height"`
	Regions []AtlasRegionSpec `yaml:"regions"`
}

type AtlasRegionSpec struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ParseAtlas decodes an atlas definition. Page files are resolved relative to
// dir and handed to textures; a nil textures leaves every page untextured.
func ParseAtlas(data []byte, dir string, textures TextureLoader) (*Atlas, error) {
	var spec AtlasSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("skeleton: unmarshal atlas: %w", err)
	}

	atlas := &Atlas{}
	for _, ps := range spec.Pages {
		page := &AtlasPage{Name: ps.Name, File: ps.File, Width: ps.Width, Height: ps.Height}
		if page.Name == "" {
			page.Name = ps.File
		}
		if textures != nil && ps.File != "" {
			img, err := textures.LoadTexture(path.Join(dir, ps.File))
			if err != nil {
				return nil, fmt.Errorf("skeleton: atlas page %s: %w", ps.File, err)
			}
			page.Texture = img
			if img != nil && (page.Width <= 0 || page.Height <= 0) {
				b := img.Bounds()
				page.Width, page.Height = b.Dx(), b.Dy()
			}
		}
		if page.Width <= 0 || page.Height <= 0 {
			return nil, fmt.Errorf("skeleton: atlas page %q has no size", page.Name)
		}
		atlas.Pages = append(atlas.Pages, page)

		for _, rs := range ps.Regions {
			w, h := float32(page.Width), float32(page.Height)
			atlas.Regions = append(atlas.Regions, &AtlasRegion{
				Name:   rs.Name,
				Page:   page,
				X:      rs.X,
				Y:      rs.Y,
				Width:  rs.Width,
				Height: rs.Height,
				U:      float32(rs.X) / w,
				V:      float32(rs.Y) / h,
				U2:     float32(rs.X+rs.Width) / w,
				V2:     float32(rs.Y+rs.Height) / h,
			})
		}
	}
	return atlas, nil
}
