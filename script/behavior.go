// Package script drives a puppet from a tengo script.
//
// A script defines on_event(engine, state, event) and may define
// on_start(engine, state). The top-level `events` array lists the puppet
// event names the script wants; AnimationEnd is always delivered.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/skeletal/common"
	"github.com/milk9111/skeletal/puppet"
)

var ErrNoEventHandler = errors.New("script: on_event is not defined")

// Behavior is a compiled script bound to one puppet.
type Behavior struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	puppet   *puppet.Puppet
	subs     []puppet.Subscription
	events   []string
	hasStart bool

	running bool
	pending []puppet.Event
}

// Load compiles src and subscribes it to p. name is only used in errors and
// logs.
func Load(name string, src []byte, p *puppet.Puppet) (*Behavior, error) {
	if p == nil {
		return nil, fmt.Errorf("script: %s: nil puppet", name)
	}

	// Run the script alone once to learn which handlers and events it has.
	probe := tengo.NewScript(src)
	probe.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	probed, err := probe.Run()
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	if !probed.IsDefined("on_event") {
		return nil, fmt.Errorf("script: %s: %w", name, ErrNoEventHandler)
	}

	b := &Behavior{
		name:     name,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		puppet:   p,
		hasStart: probed.IsDefined("on_start"),
		events:   []string{puppet.AnimationEnd},
	}
	if probed.IsDefined("events") {
		for _, v := range probed.Get("events").Array() {
			s, ok := v.(string)
			if !ok || s == "" || s == puppet.AnimationEnd {
				continue
			}
			b.events = append(b.events, s)
		}
	}

	full := tengo.NewScript([]byte(string(src) + "\n" + dispatchSource(b.hasStart)))
	_ = full.Add("__phase", "")
	_ = full.Add("__engine", map[string]any{})
	_ = full.Add("__state", map[string]any{})
	_ = full.Add("__event", map[string]any{})
	full.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	b.compiled, err = full.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	b.engine = buildEngine(p)

	for _, ev := range b.events {
		b.subs = append(b.subs, p.On(ev, b.handle))
	}
	return b, nil
}

func dispatchSource(hasStart bool) string {
	var sb strings.Builder
	sb.WriteString("if __phase == \"event\" {\n\ton_event(__engine, __state, __event)\n}")
	if hasStart {
		sb.WriteString(" else if __phase == \"start\" {\n\ton_start(__engine, __state)\n}")
	}
	sb.WriteString("\n")
	return sb.String()
}

// Events returns the event names the script is subscribed to.
func (b *Behavior) Events() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.events...)
}

// Start runs on_start if the script defines it.
func (b *Behavior) Start() error {
	if b == nil || !b.hasStart {
		return nil
	}
	err := b.run("start", nil)
	b.drain()
	return err
}

// State returns the script's persistent state map.
func (b *Behavior) State() map[string]any {
	if b == nil {
		return nil
	}
	out, _ := objectToAny(b.state).(map[string]any)
	return out
}

// Close unsubscribes the script from its puppet.
func (b *Behavior) Close() {
	if b == nil {
		return
	}
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
	b.pending = nil
}

// handle queues events raised while the script is already running; tengo
// programs are not re-entrant.
func (b *Behavior) handle(ev puppet.Event) {
	b.pending = append(b.pending, ev)
	b.drain()
}

func (b *Behavior) drain() {
	if b.running {
		return
	}
	for len(b.pending) > 0 {
		next := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.run("event", eventObject(next)); err != nil {
			common.Logger().Warn("script event failed", "script", b.name, "event", next.Name, "err", err)
		}
	}
}

func (b *Behavior) run(phase string, event tengo.Object) error {
	if b.compiled == nil {
		return fmt.Errorf("script: %s: not compiled", b.name)
	}
	if event == nil {
		event = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := b.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := b.compiled.Set("__engine", b.engine); err != nil {
		return err
	}
	if err := b.compiled.Set("__state", b.state); err != nil {
		return err
	}
	if err := b.compiled.Set("__event", event); err != nil {
		return err
	}

	b.running = true
	defer func() { b.running = false }()
	if err := b.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s %s: %w", b.name, phase, err)
	}
	return nil
}

func eventObject(ev puppet.Event) tengo.Object {
	values := map[string]tengo.Object{
		"name":      &tengo.String{Value: ev.Name},
		"animation": &tengo.String{Value: ev.Animation},
	}
	if d := ev.Data; d != nil {
		values["int"] = &tengo.Int{Value: int64(d.Int)}
		values["float"] = &tengo.Float{Value: d.Float}
		values["string"] = &tengo.String{Value: d.String}
	}
	return &tengo.ImmutableMap{Value: values}
}
