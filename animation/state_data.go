package animation

import "github.com/milk9111/skeletal/skeleton"

type mixKey struct {
	from, to *skeleton.Animation
}

// StateData holds the cross-fade durations between animations of one
// skeleton definition.
type StateData struct {
	Skeleton   *skeleton.Data
	DefaultMix float64

	mixes map[mixKey]float64
}

func NewStateData(data *skeleton.Data) *StateData {
	return &StateData{Skeleton: data, mixes: make(map[mixKey]float64)}
}

// SetDefaultMix sets the mix used when no pair mix is set. Negative values
// are clamped to zero.
func (d *StateData) SetDefaultMix(v float64) {
	if v < 0 {
		v = 0
	}
	d.DefaultMix = v
}

// SetMix sets the mix duration between two animations by name and reports
// whether both were found.
func (d *StateData) SetMix(from, to string, duration float64) bool {
	a, b := d.Skeleton.FindAnimation(from), d.Skeleton.FindAnimation(to)
	if a == nil || b == nil {
		return false
	}
	d.SetAnimationMix(a, b, duration)
	return true
}

func (d *StateData) SetAnimationMix(from, to *skeleton.Animation, duration float64) {
	if duration < 0 {
		duration = 0
	}
	d.mixes[mixKey{from: from, to: to}] = duration
}

// Mix returns the cross-fade duration from one animation to another.
func (d *StateData) Mix(from, to *skeleton.Animation) float64 {
	if v, ok := d.mixes[mixKey{from: from, to: to}]; ok {
		return v
	}
	return d.DefaultMix
}
