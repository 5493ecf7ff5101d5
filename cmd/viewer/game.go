package main

import (
	_ "embed"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/skeletal/actor"
	"github.com/milk9111/skeletal/assets"
	"github.com/milk9111/skeletal/prefabs"
	"github.com/milk9111/skeletal/render"
	"github.com/milk9111/skeletal/scene"
	"github.com/milk9111/skeletal/skeleton"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// groundRatio places the skeleton origin this far down the screen.
	groundRatio = 0.75
)

//go:embed highlight.kage
var highlightSource []byte

type Config struct {
	ActorFile string
	StageFile string
	Debug     bool
	Watch     bool
	Mute      bool
	Zoom      float64
}

type Game struct {
	cfg Config

	cache    *skeleton.Cache
	library  *assets.Library
	stage    *actor.Stage
	watcher  *prefabs.Watcher
	clock    *scene.Clock
	renderer *render.EbitenRenderer

	highlight  *ebiten.Shader
	face       text.Face
	background color.Color

	pending     float64
	view        ebiten.GeoM
	hovered     *actor.Actor
	hoveredPart string
	status      string
}

func NewGame(cfg Config) (*Game, error) {
	library := assets.NewLibrary()
	library.SetMuted(cfg.Mute)

	g := &Game{
		cfg:        cfg,
		library:    library,
		cache:      skeleton.NewCache(library, library),
		clock:      scene.NewClock(nil),
		renderer:   render.NewEbitenRenderer(nil),
		face:       text.NewGoXFace(basicfont.Face7x13),
		background: colornames.Darkslategray,
	}

	if sh, err := ebiten.NewShader(highlightSource); err == nil {
		g.highlight = sh
	} else {
		log.Printf("highlight shader compile error: %v", err)
	}

	if err := g.loadStage(); err != nil {
		if g.stage == nil {
			return nil, err
		}
		log.Printf("stage loaded with errors: %v", err)
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir(), prefabs.Dir()+"/scripts", assets.Dir())
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) stageSpec() (prefabs.StageSpec, error) {
	if g.cfg.StageFile != "" {
		return prefabs.LoadStageSpec(g.cfg.StageFile)
	}
	return prefabs.StageSpec{
		Name:   g.cfg.ActorFile,
		Zoom:   g.cfg.Zoom,
		Actors: []prefabs.StageActorSpec{{Prefab: g.cfg.ActorFile}},
	}, nil
}

// loadStage replaces the current stage. On a spec error the old stage stays.
func (g *Game) loadStage() error {
	spec, err := g.stageSpec()
	if err != nil {
		return err
	}
	stage, err := actor.LoadStage(g.cache, g.library, prefabs.LoadScript, spec)
	g.clearHover()
	if g.stage != nil {
		g.stage.Destroy()
	}
	g.stage = stage
	if spec.Background != nil {
		g.background = spec.Background.NRGBA()
	}
	g.applyDebug()
	return err
}

func (g *Game) applyDebug() {
	for _, a := range g.stage.Actors() {
		a.Puppet.SetShowDebug(g.cfg.Debug || a.Spec.ShowDebug)
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.stage != nil {
		g.stage.Destroy()
	}
}

func (g *Game) Update() error {
	g.pending += g.clock.Tick()
	g.pollWatcher()
	g.updateHover()
	g.handleKeys()
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case c, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(c)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("watch error: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(c prefabs.Change) {
	if c.Kind == prefabs.ChangeSpec && g.cfg.StageFile != "" && prefabs.SameFile(c.Path, g.cfg.StageFile) {
		if err := g.loadStage(); err != nil {
			g.status = fmt.Sprintf("reload %s: %v", c.Path, err)
			log.Print(g.status)
			return
		}
		g.status = "reloaded stage"
		return
	}

	n, err := g.stage.Reload(c)
	if err != nil {
		g.status = fmt.Sprintf("reload %s: %v", c.Path, err)
		log.Print(g.status)
	} else if n > 0 {
		g.status = fmt.Sprintf("reloaded %d actor(s) after %s change", n, c.Kind)
	}
	if n > 0 {
		g.clearHover()
		g.applyDebug()
	}
}

func (g *Game) clearHover() {
	if g.hovered != nil && g.hovered.Puppet != nil {
		g.hovered.Puppet.SetEffect(nil)
	}
	g.hovered, g.hoveredPart = nil, ""
}

func (g *Game) updateHover() {
	inv := g.view
	if !inv.IsInvertible() {
		return
	}
	inv.Invert()
	cx, cy := ebiten.CursorPosition()
	x, y := inv.Apply(float64(cx), float64(cy))

	hovered, part := g.stage.HitTest(x, y)
	if hovered != g.hovered {
		if g.hovered != nil {
			g.hovered.Puppet.SetEffect(nil)
		}
		if hovered != nil && g.highlight != nil {
			hovered.Puppet.SetEffect(g.highlight)
		}
	}
	g.hovered, g.hoveredPart = hovered, part
}

// target is the actor keyboard commands apply to.
func (g *Game) target() *actor.Actor {
	if g.hovered != nil {
		return g.hovered
	}
	if actors := g.stage.Actors(); len(actors) > 0 {
		return actors[len(actors)-1]
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.cfg.Debug = !g.cfg.Debug
		g.applyDebug()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.loadStage(); err != nil {
			g.status = fmt.Sprintf("reload: %v", err)
		} else {
			g.status = "reloaded stage"
		}
	}

	a := g.target()
	if a == nil {
		return
	}
	p := a.Puppet
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		p.SetFliped(!p.Fliped())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if p.Current() != "" {
			p.Stop()
		} else if a.Spec.Animation != "" {
			p.Play(a.Spec.Animation, a.Spec.Loop)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		p.SetSpeed(p.Speed() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		p.SetSpeed(p.Speed() / 2)
	}

	anims := p.Data.Animations
	for i := 0; i < len(anims) && i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			d := p.Play(anims[i].Name, ebiten.IsKeyPressed(ebiten.KeyShift))
			g.status = fmt.Sprintf("%s: %s (%.2fs)", a.Name, anims[i].Name, d)
		}
	}

	skins := p.Data.Skins
	for i := 0; i < len(skins) && i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1 + ebiten.Key(i)) {
			look := skins[i].Name
			if ebiten.IsKeyPressed(ebiten.KeyShift) && p.Look() != "" {
				look = p.Look() + ";" + look
			}
			p.SetLook(look)
			g.status = fmt.Sprintf("%s look: %q", a.Name, p.Look())
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	g.view.Reset()
	g.view.Scale(1, -1)
	g.view.Translate(float64(w)/2, float64(h)*groundRatio)

	g.renderer.Target = screen
	frame := &scene.Frame{
		Delta:          g.pending,
		ViewProjection: g.view,
		Renderer:       g.renderer,
	}
	g.pending = 0
	scene.Draw(g.stage.Root, frame)

	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("FPS: %.1f  actors: %d  definitions: %d", ebiten.ActualFPS(), len(g.stage.Actors()), g.cache.Len()),
		"1-9 play (shift loops)  F1-F9 look (shift merges)  F flip  space stop  -/= speed  D debug  R reload",
	}
	if a := g.target(); a != nil {
		p := a.Puppet
		lines = append(lines, fmt.Sprintf("%s: playing %q last %q look %q speed %.2f", a.Name, p.Current(), p.LastCompleted(), p.Look(), p.Speed()))
	}
	if g.hovered != nil {
		lines = append(lines, fmt.Sprintf("hover: %s/%s", g.hovered.Name, g.hoveredPart))
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.ColorScale.ScaleWithColor(colornames.White)
	op.LineSpacing = 16
	text.Draw(screen, strings.Join(lines, "\n"), g.face, op)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
