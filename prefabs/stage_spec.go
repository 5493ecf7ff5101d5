package prefabs

import (
	"fmt"
	"path"

	"gopkg.in/yaml.v3"
)

// StageSpec places prefab actors in one scene. Actors later in the list draw
// on top of earlier ones.
type StageSpec struct {
	Name       string           `yaml:"name"`
	Background *YAMLColor       `yaml:"background"`
	Zoom       float64          `yaml:"zoom"`
	Actors     []StageActorSpec `yaml:"actors"`
}

// StageActorSpec references an actor prefab. Overrides replace fields of the
// prefab by yaml key; nested maps such as transform are merged key by key.
type StageActorSpec struct {
	Prefab    string         `yaml:"prefab"`
	Overrides map[string]any `yaml:"overrides"`
}

func LoadStageSpec(filename string) (StageSpec, error) {
	spec, err := LoadSpec[StageSpec](filename)
	if err != nil {
		return spec, err
	}
	if spec.Zoom == 0 {
		spec.Zoom = 1
	}
	return spec, nil
}

// File is the prefab file name; a bare name gets the .yaml extension.
func (s StageActorSpec) File() string {
	if s.Prefab == "" || path.Ext(s.Prefab) != "" {
		return s.Prefab
	}
	return s.Prefab + ".yaml"
}

// Resolve loads the referenced prefab and applies the overrides.
func (s StageActorSpec) Resolve() (*ActorSpec, error) {
	base, err := LoadActorSpec(s.File())
	if err != nil {
		return nil, err
	}
	if len(s.Overrides) == 0 {
		return base, nil
	}

	raw, err := DecodeSpec[map[string]any](base)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", s.Prefab, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	mergeInto(raw, s.Overrides)

	out, err := DecodeSpec[ActorSpec](raw)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s overrides: %w", s.Prefab, err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeSpec re-decodes an arbitrary yaml value into T.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		existing, ok := dst[k].(map[string]any)
		if !ok {
			dst[k] = sub
			continue
		}
		mergeInto(existing, sub)
	}
}
