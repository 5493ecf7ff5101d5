// Package puppet is a scene node that plays a skeletal animation, answers hit
// tests against its current pose and renders it.
package puppet

import (
	"log/slog"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/animation"
	"github.com/milk9111/skeletal/bounds"
	"github.com/milk9111/skeletal/common"
	"github.com/milk9111/skeletal/render"
	"github.com/milk9111/skeletal/scene"
	"github.com/milk9111/skeletal/skeleton"
)

// compositeSkin names a merged look built without an explicit name.
const compositeSkin = "unnamed"

// Puppet owns one skeleton instance and its animation state. The definition
// is shared through the cache it was loaded from.
type Puppet struct {
	scene.Node

	Data     *skeleton.Data
	Skeleton *skeleton.Skeleton
	State    *animation.State

	stateData *animation.StateData
	cache     *skeleton.Cache
	bounds    *bounds.Bounds
	builder   render.Builder
	listener  *listener
	events    emitter
	debugLine *scene.Line
	effect    *ebiten.Shader

	look          string
	fliped        bool
	speed         float64
	current       string
	lastCompleted string
	depthWrite    bool
	hitTest       bool
}

// SetLogger configures logging for the puppet runtime. It is silent by
// default.
func SetLogger(l *slog.Logger) {
	common.SetLogger(l)
}

// New loads ref through cache and builds a puppet in the setup pose. See
// skeleton.ResolveFiles for the reference forms.
func New(cache *skeleton.Cache, ref string) (*Puppet, error) {
	data, err := cache.Load(ref)
	if err != nil {
		return nil, err
	}
	return newPuppet(cache, data), nil
}

// NewPair is New with explicit skeleton and atlas files.
func NewPair(cache *skeleton.Cache, skelFile, atlasFile string) (*Puppet, error) {
	data, err := cache.LoadPair(skelFile, atlasFile)
	if err != nil {
		return nil, err
	}
	return newPuppet(cache, data), nil
}

func newPuppet(cache *skeleton.Cache, data *skeleton.Data) *Puppet {
	p := &Puppet{
		Data:  data,
		cache: cache,
		speed: 1,
	}
	p.Init()
	p.Skeleton = skeleton.New(data)
	p.stateData = animation.NewStateData(data)
	p.State = animation.NewState(p.stateData)
	p.listener = &listener{owner: p}

	for _, slot := range p.Skeleton.Slots {
		if !slot.Bone.Active() {
			continue
		}
		if a := slot.Attachment(); a != nil && a.Kind() != skeleton.KindBoundingBox {
			p.bounds = bounds.New()
			p.hitTest = true
			break
		}
	}
	p.Skeleton.UpdateWorldTransform()
	if p.bounds != nil {
		p.bounds.Update(p.Skeleton, true)
	}
	return p
}

// Destroy detaches the track listener, clears playback and releases the
// definition. The puppet must not be used afterwards.
func (p *Puppet) Destroy() {
	if p == nil || p.State == nil {
		return
	}
	p.listener.detach()
	p.State.ClearTracks()
	p.events.clear()
	if parent := p.Parent(); parent != nil {
		parent.RemoveChild(p)
	}
	p.cache.Release(p.Data)
	p.State = nil
	p.Skeleton = nil
	p.bounds = nil
	p.current, p.lastCompleted = "", ""
}

// On registers fn for events named name: a keyframe event's own name, or
// AnimationEnd.
func (p *Puppet) On(name string, fn Handler) Subscription {
	if p == nil {
		return Subscription{}
	}
	return p.events.on(name, fn)
}

// SetLook applies a skin selection of the form [name:]skin1[;skin2...].
// The name ends at the first colon; later colons belong to skin names.
// An empty selection removes the skin. A single unprefixed name applies that
// skin; anything else merges the listed skins into a new one, later skins
// winning, and unknown skins are skipped. Slots return to their setup
// attachments; playback is left alone.
func (p *Puppet) SetLook(look string) {
	if p == nil || p.Skeleton == nil {
		return
	}
	sk := p.Skeleton
	if look == "" {
		sk.SetSkin(nil)
		sk.SetSlotsToSetupPose()
		p.look = ""
		return
	}

	name, list := "", look
	if before, after, ok := strings.Cut(look, ":"); ok {
		name, list = before, after
	}
	tokens := strings.Split(list, ";")
	if name == "" && len(tokens) == 1 {
		if skin := p.Data.FindSkin(list); skin != nil {
			sk.SetSkin(skin)
			sk.SetSlotsToSetupPose()
			p.look = list
		}
		return
	}

	if name == "" {
		name = compositeSkin
	}
	skin := skeleton.NewSkin(name)
	for _, t := range tokens {
		if sub := p.Data.FindSkin(t); sub != nil {
			skin.AddSkin(sub)
		}
	}
	sk.SetSkin(skin)
	sk.SetSlotsToSetupPose()
	p.look = name
}

// Look returns the name recorded by the last SetLook that applied a skin.
func (p *Puppet) Look() string {
	if p == nil {
		return ""
	}
	return p.look
}

// SetFliped mirrors the skeleton horizontally. The node transform is not
// touched.
func (p *Puppet) SetFliped(v bool) {
	if p == nil || p.Skeleton == nil {
		return
	}
	if v {
		p.Skeleton.ScaleX = -1
	} else {
		p.Skeleton.ScaleX = 1
	}
	p.fliped = v
}

// Fliped reports whether the skeleton is mirrored horizontally.
func (p *Puppet) Fliped() bool {
	return p != nil && p.fliped
}

// SetSpeed scales playback. Negative speeds are treated as zero.
func (p *Puppet) SetSpeed(v float64) {
	if p == nil || p.State == nil {
		return
	}
	v = math.Max(v, 0)
	p.State.TimeScale = v
	p.speed = v
}

// Speed returns the playback scale set by SetSpeed.
func (p *Puppet) Speed() float64 {
	if p == nil {
		return 0
	}
	return p.speed
}

// SetRecovery sets the cross-fade used by Play. Zero makes Play cut.
func (p *Puppet) SetRecovery(v float64) {
	if p == nil || p.stateData == nil {
		return
	}
	p.stateData.SetDefaultMix(v)
}

// Recovery returns the cross-fade duration used by Play.
func (p *Puppet) Recovery() float64 {
	if p == nil || p.stateData == nil {
		return 0
	}
	return p.stateData.DefaultMix
}

// SetShowDebug adds or removes the outline child used to draw bounding
// boxes.
func (p *Puppet) SetShowDebug(v bool) {
	if p == nil {
		return
	}
	if v {
		if p.debugLine == nil {
			p.debugLine = scene.NewLine()
			p.AddChild(p.debugLine)
		}
		return
	}
	if p.debugLine != nil {
		p.RemoveChild(p.debugLine)
		p.debugLine = nil
	}
}

// IsShowDebug reports whether the bounding box outline is attached.
func (p *Puppet) IsShowDebug() bool {
	return p != nil && p.debugLine != nil
}

// DebugLine returns the outline child, or nil when debug drawing is off.
func (p *Puppet) DebugLine() *scene.Line {
	if p == nil {
		return nil
	}
	return p.debugLine
}

func (p *Puppet) SetDepthWrite(v bool) {
	if p == nil {
		return
	}
	p.depthWrite = v
}

// IsDepthWrite reports whether batches request depth write and test.
func (p *Puppet) IsDepthWrite() bool {
	return p != nil && p.depthWrite
}

// SetHitTestEnabled turns hit testing on or off. Enabling it on a puppet
// whose setup pose had nothing to hit allocates the bounds on demand.
func (p *Puppet) SetHitTestEnabled(v bool) {
	if p == nil {
		return
	}
	if v && p.bounds == nil && p.Skeleton != nil {
		p.bounds = bounds.New()
	}
	p.hitTest = v
}

// IsHitTestEnabled reports whether ContainsPoint reports hits.
func (p *Puppet) IsHitTestEnabled() bool {
	return p != nil && p.hitTest
}

// SetEffect sets the shader used for every batch; nil uses plain textured
// triangles.
func (p *Puppet) SetEffect(s *ebiten.Shader) {
	if p == nil {
		return
	}
	p.effect = s
}

// Play starts an animation on track 0 and returns its length in wall-clock
// seconds at the current speed. An unknown name returns 0 and changes
// nothing. With a recovery time the pose first fades to the setup pose and
// the animation is queued just after.
func (p *Puppet) Play(name string, loop bool) float64 {
	if p == nil || p.State == nil {
		return 0
	}
	anim := p.Data.FindAnimation(name)
	if anim == nil {
		return 0
	}
	p.current = name

	var entry *animation.TrackEntry
	if recovery := p.stateData.DefaultMix; recovery > 0 {
		p.State.SetEmptyAnimation(0, recovery)
		entry = p.State.AddAnimation(0, anim, loop, common.Epsilon)
	} else {
		entry = p.State.SetAnimation(0, anim, loop)
	}
	if entry == nil {
		return 0
	}
	entry.Listener = p.listener
	return entry.AnimationEnd / math.Max(p.State.TimeScale, common.Epsilon)
}

// Stop clears track 0, leaving the pose where it is.
func (p *Puppet) Stop() {
	if p == nil || p.State == nil {
		return
	}
	p.State.ClearTrack(0)
}

// Current returns the animation last started with Play until its entry ends.
func (p *Puppet) Current() string {
	if p == nil {
		return ""
	}
	return p.current
}

// LastCompleted returns the last animation that finished a pass, cleared when
// an animation is interrupted.
func (p *Puppet) LastCompleted() string {
	if p == nil {
		return ""
	}
	return p.lastCompleted
}

// Advance steps playback by dt seconds, poses the skeleton and rebuilds the
// hit-test bounds.
func (p *Puppet) Advance(dt float64) {
	if p == nil || p.State == nil {
		return
	}
	p.State.Update(dt)
	p.State.Apply(p.Skeleton)
	p.Skeleton.UpdateWorldTransform()
	if p.bounds != nil && p.hitTest {
		p.bounds.Update(p.Skeleton, true)
	}
}

// Visit advances by the frame delta before the node and its children are
// visited.
func (p *Puppet) Visit(f *scene.Frame) {
	if p == nil {
		return
	}
	if f != nil {
		p.Advance(f.Delta)
	}
	p.Node.Visit(f)
}

// Render pushes one batch per drawable slot in draw order.
func (p *Puppet) Render(f *scene.Frame) {
	if p == nil || p.Skeleton == nil || f == nil || f.Renderer == nil {
		return
	}
	opts := render.Options{
		NodeWorld:      p.World(),
		ViewProjection: f.ViewProjection,
		Opacity:        p.RealOpacity(),
		DepthWrite:     p.depthWrite,
		Effect:         p.effect,
	}
	if p.debugLine != nil {
		p.debugLine.Clear()
		if p.hitTest {
			opts.Debug = p.debugLine
		}
	}
	p.builder.Build(p.Skeleton, opts, f.Renderer)
}

// KeyPoint returns the skeleton-space position of a point attachment.
// "slot" picks the slot's first point attachment in the current skin, then
// the default skin; "slot/attachment" names one. A miss returns the zero
// vector.
func (p *Puppet) KeyPoint(path string) common.Vec2 {
	if p == nil || p.Skeleton == nil {
		return common.Vec2{}
	}
	sk := p.Skeleton
	slotName, attachmentName, scoped := strings.Cut(path, "/")
	idx := sk.FindSlotIndex(slotName)
	if idx < 0 {
		return common.Vec2{}
	}

	var a skeleton.Attachment
	if scoped {
		a = sk.Attachment(idx, attachmentName)
	} else {
		a = firstPoint(sk.Skin, idx)
		if a == nil {
			a = firstPoint(p.Data.DefaultSkin, idx)
		}
	}
	point, ok := a.(*skeleton.PointAttachment)
	if !ok {
		return common.Vec2{}
	}
	return point.ComputeWorldPosition(sk.Slots[idx].Bone)
}

func firstPoint(skin *skeleton.Skin, slotIndex int) skeleton.Attachment {
	for _, e := range skin.AttachmentsForSlot(slotIndex) {
		if e.Attachment.Kind() == skeleton.KindPoint {
			return e.Attachment
		}
	}
	return nil
}

// ContainsPoint returns the name of the attachment under a skeleton-space
// point, or "" when nothing is hit or hit testing is off.
func (p *Puppet) ContainsPoint(x, y float64) string {
	if p == nil || p.bounds == nil || !p.hitTest {
		return ""
	}
	if a := p.bounds.Hit(x, y); a != nil {
		return a.Name()
	}
	return ""
}

// IntersectsSegment is ContainsPoint for a skeleton-space segment.
func (p *Puppet) IntersectsSegment(x1, y1, x2, y2 float64) string {
	if p == nil || p.bounds == nil || !p.hitTest {
		return ""
	}
	if a := p.bounds.HitSegment(x1, y1, x2, y2); a != nil {
		return a.Name()
	}
	return ""
}

// ToLocal maps a scene-space point into skeleton space using the world
// transform from the last visit.
func (p *Puppet) ToLocal(x, y float64) (float64, float64) {
	if p == nil {
		return x, y
	}
	m := p.World()
	if !m.IsInvertible() {
		return x, y
	}
	m.Invert()
	return m.Apply(x, y)
}
