package prefabs

import (
	"errors"
	"fmt"

	"github.com/milk9111/skeletal/common"
	"gopkg.in/yaml.v3"
)

var ErrNoSkeleton = errors.New("prefabs: actor has no skeleton")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ActorSpec describes one animated actor: which definition it shows, how it
// starts playing, and the script that drives it.
type ActorSpec struct {
	Name       string        `yaml:"name"`
	Skeleton   string        `yaml:"skeleton"`
	Atlas      string        `yaml:"atlas,omitempty"`
	Look       string        `yaml:"look,omitempty"`
	Animation  string        `yaml:"animation,omitempty"`
	Loop       bool          `yaml:"loop,omitempty"`
	Speed      *float64      `yaml:"speed,omitempty"`
	Recovery   float64       `yaml:"recovery,omitempty"`
	Fliped     bool          `yaml:"fliped,omitempty"`
	DepthWrite bool          `yaml:"depth_write,omitempty"`
	ShowDebug  bool          `yaml:"show_debug,omitempty"`
	HitTest    *bool         `yaml:"hit_test,omitempty"`
	Color      *YAMLColor    `yaml:"color,omitempty"`
	Script     string        `yaml:"script,omitempty"`
	Transform  TransformSpec `yaml:"transform"`
}

// Ref is the definition reference to hand to skeleton.Cache.Load.
func (s ActorSpec) Ref() string {
	if s.Atlas == "" {
		return s.Skeleton
	}
	return s.Skeleton + "|" + s.Atlas
}

func (s ActorSpec) Validate() error {
	if s.Skeleton == "" {
		return fmt.Errorf("%w: %s", ErrNoSkeleton, s.Name)
	}
	if s.Speed != nil && *s.Speed < 0 {
		return fmt.Errorf("prefabs: actor %s: negative speed %v", s.Name, *s.Speed)
	}
	return nil
}

func LoadActorSpec(filename string) (*ActorSpec, error) {
	spec, err := LoadSpec[ActorSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = trimExt(cleanPrefabPath(filename))
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

type TransformSpec struct {
	X        float64  `yaml:"x,omitempty"`
	Y        float64  `yaml:"y,omitempty"`
	ScaleX   float64  `yaml:"scale_x,omitempty"`
	ScaleY   float64  `yaml:"scale_y,omitempty"`
	Rotation float64  `yaml:"rotation,omitempty"`
	Opacity  *float64 `yaml:"opacity,omitempty"`
}

// Scale returns the scale with unset axes treated as 1.
func (t TransformSpec) Scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

func (t TransformSpec) OpacityOrOne() float64 {
	if t.Opacity == nil {
		return 1
	}
	return common.Clamp(*t.Opacity, 0, 1)
}

// YAMLColor is an "rrggbb" or "rrggbbaa" color; a leading # is allowed.
type YAMLColor struct {
	common.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := common.ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	v := c.Color.ToABGR()
	return fmt.Sprintf("%02x%02x%02x%02x", v&0xff, (v>>8)&0xff, (v>>16)&0xff, v>>24), nil
}
