package actor

import (
	"errors"
	"fmt"
	"path"

	"github.com/milk9111/skeletal/common"
	"github.com/milk9111/skeletal/prefabs"
	"github.com/milk9111/skeletal/scene"
	"github.com/milk9111/skeletal/skeleton"
)

// Assets is the content library behind a stage's definitions and sounds.
type Assets interface {
	SoundPlayer
	// Rel maps a file path to the form skeleton references use.
	Rel(path string) string
	Invalidate(path string)
}

type entry struct {
	prefab prefabs.StageActorSpec
	actor  *Actor
}

// Stage is a scene root holding actors in draw order.
type Stage struct {
	Root   *scene.Node
	cache  *skeleton.Cache
	assets Assets
	opts   Options
	list   []*entry
}

// NewStage creates an empty stage. assets may be nil.
func NewStage(cache *skeleton.Cache, assets Assets, scripts ScriptLoader) *Stage {
	s := &Stage{
		Root:   scene.NewNode(),
		cache:  cache,
		assets: assets,
		opts:   Options{Scripts: scripts},
	}
	if assets != nil {
		s.opts.Sounds = assets
	}
	return s
}

// LoadStage builds every actor a stage description lists. Actors that fail
// to build are skipped and reported in the joined error.
func LoadStage(cache *skeleton.Cache, assets Assets, scripts ScriptLoader, spec prefabs.StageSpec) (*Stage, error) {
	s := NewStage(cache, assets, scripts)
	s.Root.ScaleX, s.Root.ScaleY = spec.Zoom, spec.Zoom
	var errs []error
	for _, a := range spec.Actors {
		if _, err := s.AddPrefab(a); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

// Add builds spec and puts it on top of the stage.
func (s *Stage) Add(spec prefabs.ActorSpec) (*Actor, error) {
	return s.add(prefabs.StageActorSpec{}, &spec)
}

// AddPrefab resolves a prefab reference and puts the actor on top.
func (s *Stage) AddPrefab(ref prefabs.StageActorSpec) (*Actor, error) {
	spec, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	return s.add(ref, spec)
}

func (s *Stage) add(ref prefabs.StageActorSpec, spec *prefabs.ActorSpec) (*Actor, error) {
	a, err := Build(s.cache, *spec, s.opts)
	if err != nil {
		return nil, err
	}
	s.Root.AddChild(a.Puppet)
	s.list = append(s.list, &entry{prefab: ref, actor: a})
	return a, nil
}

// Actors returns the actors bottom to top.
func (s *Stage) Actors() []*Actor {
	out := make([]*Actor, 0, len(s.list))
	for _, e := range s.list {
		out = append(out, e.actor)
	}
	return out
}

// Find returns the first actor with the given name.
func (s *Stage) Find(name string) *Actor {
	for _, e := range s.list {
		if e.actor.Name == name {
			return e.actor
		}
	}
	return nil
}

// Remove destroys a and takes it off the stage.
func (s *Stage) Remove(a *Actor) bool {
	for i, e := range s.list {
		if e.actor == a {
			s.list = append(s.list[:i], s.list[i+1:]...)
			a.Destroy()
			return true
		}
	}
	return false
}

// Destroy removes every actor.
func (s *Stage) Destroy() {
	for _, e := range s.list {
		e.actor.Destroy()
	}
	s.list = nil
}

// HitTest returns the top-most actor under a scene-space point and the name
// of the attachment hit. It uses transforms from the last frame.
func (s *Stage) HitTest(x, y float64) (*Actor, string) {
	for i := len(s.list) - 1; i >= 0; i-- {
		a := s.list[i].actor
		if !a.Puppet.Visible {
			continue
		}
		lx, ly := a.Puppet.ToLocal(x, y)
		if name := a.Puppet.ContainsPoint(lx, ly); name != "" {
			return a, name
		}
	}
	return nil, ""
}

// Reload rebuilds the actors affected by a changed file and reports how many
// were rebuilt. An actor that fails to rebuild keeps running as it was.
func (s *Stage) Reload(c prefabs.Change) (int, error) {
	rel := c.Path
	if s.assets != nil {
		rel = s.assets.Rel(c.Path)
	}

	var match func(e *entry) bool
	switch c.Kind {
	case prefabs.ChangeSpec:
		match = func(e *entry) bool { return prefabs.SameFile(c.Path, e.prefab.File()) }
	case prefabs.ChangeScript:
		match = func(e *entry) bool {
			return e.actor.Spec.Script != "" && prefabs.SameFile(c.Path, prefabs.ScriptPath(e.actor.Spec.Script))
		}
	case prefabs.ChangeSkeleton, prefabs.ChangeAtlas:
		s.cache.Invalidate(rel)
		match = func(e *entry) bool {
			skelFile, atlasFile := e.actor.Files()
			return path.Clean(skelFile) == rel || path.Clean(atlasFile) == rel
		}
	case prefabs.ChangeTexture:
		if s.assets != nil {
			s.assets.Invalidate(rel)
		}
		match = func(e *entry) bool {
			if !e.actor.UsesTexture(rel) {
				return false
			}
			_, atlasFile := e.actor.Files()
			s.cache.Invalidate(atlasFile)
			return true
		}
	case prefabs.ChangeSound:
		if s.assets != nil {
			s.assets.Invalidate(rel)
		}
		return 0, nil
	default:
		return 0, nil
	}

	n := 0
	var errs []error
	for _, e := range s.list {
		if !match(e) {
			continue
		}
		if err := s.rebuild(e); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	if n > 0 {
		common.Logger().Info("actors reloaded", "file", c.Path, "kind", c.Kind.String(), "count", n)
	}
	return n, errors.Join(errs...)
}

func (s *Stage) rebuild(e *entry) error {
	spec := e.actor.Spec
	if e.prefab.Prefab != "" {
		resolved, err := e.prefab.Resolve()
		if err != nil {
			return fmt.Errorf("actor: reload %s: %w", e.actor.Name, err)
		}
		spec = *resolved
	}
	next, err := Build(s.cache, spec, s.opts)
	if err != nil {
		return fmt.Errorf("actor: reload %s: %w", e.actor.Name, err)
	}
	old := e.actor
	if !s.Root.ReplaceChild(old.Puppet, next.Puppet) {
		s.Root.AddChild(next.Puppet)
	}
	e.actor = next
	old.Destroy()
	return nil
}
