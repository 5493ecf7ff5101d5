// Package actor builds puppets from prefab descriptions and keeps a stage of
// them in sync with their files.
package actor

import (
	"fmt"
	"path"

	"github.com/milk9111/skeletal/prefabs"
	"github.com/milk9111/skeletal/puppet"
	"github.com/milk9111/skeletal/script"
	"github.com/milk9111/skeletal/skeleton"
)

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

// SoundPlayer plays event sounds.
type SoundPlayer interface {
	PlaySound(path string, volume float64)
}

type Options struct {
	Scripts ScriptLoader
	Sounds  SoundPlayer
}

// Actor is a puppet plus the behavior and sounds configured for it.
type Actor struct {
	Name     string
	Spec     prefabs.ActorSpec
	Puppet   *puppet.Puppet
	Behavior *script.Behavior

	sounds []puppet.Subscription
}

// Build creates the actor described by spec. The puppet is not attached to
// any tree.
func Build(cache *skeleton.Cache, spec prefabs.ActorSpec, opts Options) (*Actor, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	p, err := puppet.New(cache, spec.Ref())
	if err != nil {
		return nil, fmt.Errorf("actor: %s: %w", spec.Name, err)
	}

	a := &Actor{Name: spec.Name, Spec: spec, Puppet: p}
	a.apply()

	if opts.Sounds != nil {
		a.bindSounds(opts.Sounds)
	}

	if spec.Animation != "" {
		p.Play(spec.Animation, spec.Loop)
	}

	if spec.Script != "" {
		if opts.Scripts == nil {
			a.Destroy()
			return nil, fmt.Errorf("actor: %s: script %s: no script loader", spec.Name, spec.Script)
		}
		src, err := opts.Scripts(spec.Script)
		if err != nil {
			a.Destroy()
			return nil, fmt.Errorf("actor: %s: script %s: %w", spec.Name, spec.Script, err)
		}
		b, err := script.Load(spec.Script, src, p)
		if err != nil {
			a.Destroy()
			return nil, fmt.Errorf("actor: %s: %w", spec.Name, err)
		}
		a.Behavior = b
		if err := b.Start(); err != nil {
			a.Destroy()
			return nil, fmt.Errorf("actor: %s: %w", spec.Name, err)
		}
	}
	return a, nil
}

func (a *Actor) apply() {
	p, spec := a.Puppet, a.Spec

	p.X, p.Y = spec.Transform.X, spec.Transform.Y
	p.ScaleX, p.ScaleY = spec.Transform.Scale()
	p.Angle = spec.Transform.Rotation
	p.Opacity = spec.Transform.OpacityOrOne()
	p.Tag = spec.Name

	p.SetLook(spec.Look)
	p.SetFliped(spec.Fliped)
	p.SetRecovery(spec.Recovery)
	if spec.Speed != nil {
		p.SetSpeed(*spec.Speed)
	}
	if spec.HitTest != nil {
		p.SetHitTestEnabled(*spec.HitTest)
	}
	p.SetDepthWrite(spec.DepthWrite)
	p.SetShowDebug(spec.ShowDebug)
	if spec.Color != nil {
		p.Skeleton.Color = spec.Color.Color
	}
}

// bindSounds plays the sound of every event that names one.
func (a *Actor) bindSounds(sounds SoundPlayer) {
	for _, ed := range a.Puppet.Data.Events {
		if ed.AudioPath == "" {
			continue
		}
		a.sounds = append(a.sounds, a.Puppet.On(ed.Name, func(ev puppet.Event) {
			if ev.Data == nil || ev.Data.Data == nil {
				return
			}
			sounds.PlaySound(ev.Data.Data.AudioPath, ev.Data.Volume)
		}))
	}
}

// Destroy stops the behavior and releases the puppet.
func (a *Actor) Destroy() {
	if a == nil {
		return
	}
	if a.Behavior != nil {
		a.Behavior.Close()
	}
	for _, s := range a.sounds {
		s.Cancel()
	}
	a.sounds = nil
	a.Puppet.Destroy()
}

// Files reports the skeleton and atlas files the actor was built from.
func (a *Actor) Files() (skelFile, atlasFile string) {
	return skeleton.ResolveFiles(a.Spec.Ref())
}

// UsesTexture reports whether any atlas page of the actor's definition is
// backed by file.
func (a *Actor) UsesTexture(file string) bool {
	if a == nil || a.Puppet == nil || a.Puppet.Data == nil || a.Puppet.Data.Atlas == nil {
		return false
	}
	_, atlasFile := a.Files()
	dir := path.Dir(atlasFile)
	for _, page := range a.Puppet.Data.Atlas.Pages {
		if path.Join(dir, page.File) == path.Clean(file) {
			return true
		}
	}
	return false
}
