package assets

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
)

// Library loads skeleton definitions and textures for a skeleton.Cache and
// plays event sounds. Decoded textures and sound bytes are kept until
// Invalidate is called for their file.
type Library struct {
	textures map[string]*ebiten.Image
	sounds   map[string][]byte
	muted    bool
}

func NewLibrary() *Library {
	return &Library{
		textures: make(map[string]*ebiten.Image),
		sounds:   make(map[string][]byte),
	}
}

// LoadBytes implements skeleton.Loader.
func (l *Library) LoadBytes(path string) ([]byte, error) {
	return LoadFile(path)
}

// LoadTexture implements skeleton.TextureLoader.
func (l *Library) LoadTexture(path string) (*ebiten.Image, error) {
	key := cleanAssetPath(path)
	if img, ok := l.textures[key]; ok {
		return img, nil
	}
	img, err := LoadImage(key)
	if err != nil {
		return nil, fmt.Errorf("assets: texture %s: %w", path, err)
	}
	l.textures[key] = img
	return img, nil
}

// Invalidate forgets anything cached for path.
func (l *Library) Invalidate(path string) {
	key := cleanAssetPath(path)
	delete(l.textures, key)
	delete(l.sounds, key)
}

// SetMuted disables PlaySound.
func (l *Library) SetMuted(muted bool) {
	l.muted = muted
}

// PlaySound starts a fresh player for path at the given volume. Playback
// errors are logged rather than returned.
func (l *Library) PlaySound(path string, volume float64) {
	if l == nil || l.muted || path == "" {
		return
	}
	key := cleanAssetPath(path)
	b, ok := l.sounds[key]
	if !ok {
		var err error
		b, err = LoadFile(key)
		if err != nil {
			common.Logger().Warn("sound missing", "path", path, "err", err)
			return
		}
		l.sounds[key] = b
	}
	player, err := newPlayer(key, b)
	if err != nil {
		common.Logger().Warn("sound decode failed", "path", path, "err", err)
		return
	}
	player.SetVolume(common.Clamp(volume, 0, 1))
	player.Play()
}

// Rel returns path relative to the assets directory, the form skeleton
// references use.
func (l *Library) Rel(path string) string {
	return cleanAssetPath(path)
}
