package skeleton

import (
	"fmt"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
)

const (
	SkeletonExt = ".skel.yaml"
	AtlasExt    = ".atlas.yaml"
)

// Loader supplies raw definition bytes.
type Loader interface {
	LoadBytes(path string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) ([]byte, error)

func (f LoaderFunc) LoadBytes(path string) ([]byte, error) { return f(path) }

// TextureLoader resolves an atlas page file to a texture.
type TextureLoader interface {
	LoadTexture(path string) (*ebiten.Image, error)
}

// TextureLoaderFunc adapts a function to TextureLoader.
type TextureLoaderFunc func(path string) (*ebiten.Image, error)

func (f TextureLoaderFunc) LoadTexture(path string) (*ebiten.Image, error) { return f(path) }

type cacheEntry struct {
	key      string
	skelFile string
	atlas    string
	data     *Data
	refs     int
}

// Cache shares loaded definitions between instances and counts references.
// It is not safe for concurrent use; definitions are loaded on the main
// thread during construction.
type Cache struct {
	loader   Loader
	textures TextureLoader
	entries  map[string]*cacheEntry
	byData   map[*Data]*cacheEntry
}

// NewCache creates a cache. textures may be nil.
func NewCache(loader Loader, textures TextureLoader) *Cache {
	return &Cache{
		loader:   loader,
		textures: textures,
		entries:  make(map[string]*cacheEntry),
		byData:   make(map[*Data]*cacheEntry),
	}
}

// ResolveFiles splits a definition reference into skeleton and atlas files.
// "skel|atlas" names both explicitly; otherwise the reference is a base path
// and the standard extensions are appended.
func ResolveFiles(ref string) (skelFile, atlasFile string) {
	if before, after, ok := strings.Cut(ref, "|"); ok {
		return before, after
	}
	base := strings.TrimSuffix(ref, SkeletonExt)
	return base + SkeletonExt, base + AtlasExt
}

// Load returns the definition for ref, loading it on first use. See
// ResolveFiles for the reference forms.
func (c *Cache) Load(ref string) (*Data, error) {
	skelFile, atlasFile := ResolveFiles(ref)
	return c.LoadPair(skelFile, atlasFile)
}

// LoadPair returns the definition built from a skeleton file and an atlas
// file. An empty atlasFile builds an untextured definition.
func (c *Cache) LoadPair(skelFile, atlasFile string) (*Data, error) {
	if c == nil {
		return nil, fmt.Errorf("skeleton: nil cache")
	}
	key := skelFile + "|" + atlasFile
	if e, ok := c.entries[key]; ok {
		e.refs++
		common.Logger().Debug("skeleton cache hit", "key", key, "refs", e.refs)
		return e.data, nil
	}

	var atlas *Atlas
	if atlasFile != "" {
		raw, err := c.loader.LoadBytes(atlasFile)
		if err != nil {
			return nil, fmt.Errorf("skeleton: load %s: %w", atlasFile, err)
		}
		atlas, err = ParseAtlas(raw, path.Dir(atlasFile), c.textures)
		if err != nil {
			return nil, fmt.Errorf("skeleton: load %s: %w", atlasFile, err)
		}
	}

	raw, err := c.loader.LoadBytes(skelFile)
	if err != nil {
		return nil, fmt.Errorf("skeleton: load %s: %w", skelFile, err)
	}
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("skeleton: load %s: %w", skelFile, err)
	}
	data, err := spec.Build(atlas)
	if err != nil {
		return nil, fmt.Errorf("skeleton: load %s: %w", skelFile, err)
	}

	e := &cacheEntry{key: key, skelFile: skelFile, atlas: atlasFile, data: data, refs: 1}
	c.entries[key] = e
	c.byData[data] = e
	common.Logger().Info("skeleton loaded", "skeleton", skelFile, "atlas", atlasFile,
		"bones", len(data.Bones), "slots", len(data.Slots), "animations", len(data.Animations))
	return data, nil
}

// Release drops one reference. The definition is forgotten when the last
// reference goes away.
func (c *Cache) Release(data *Data) {
	if c == nil || data == nil {
		return
	}
	e, ok := c.byData[data]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(c.byData, data)
	if cur, ok := c.entries[e.key]; ok && cur == e {
		delete(c.entries, e.key)
	}
	common.Logger().Info("skeleton released", "key", e.key)
}

// Invalidate makes the next Load of any definition built from file re-read
// it. Instances holding the old definition keep it until they release it.
func (c *Cache) Invalidate(file string) int {
	if c == nil {
		return 0
	}
	file = path.Clean(file)
	n := 0
	for key, e := range c.entries {
		if path.Clean(e.skelFile) == file || (e.atlas != "" && path.Clean(e.atlas) == file) {
			delete(c.entries, key)
			n++
		}
	}
	if n > 0 {
		common.Logger().Info("skeleton invalidated", "file", file, "entries", n)
	}
	return n
}

// Refs reports the live reference count of a definition.
func (c *Cache) Refs(data *Data) int {
	if c == nil {
		return 0
	}
	if e, ok := c.byData[data]; ok {
		return e.refs
	}
	return 0
}

// Len reports how many definitions can be served without reloading.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
