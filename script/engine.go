package script

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/skeletal/puppet"
)

func buildEngine(p *puppet.Puppet) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["play"] = &tengo.UserFunction{Name: "play", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Float{Value: 0}, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		loop := len(args) > 1 && !args[1].IsFalsy()
		return &tengo.Float{Value: p.Play(name, loop)}, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p.Stop()
		return tengo.UndefinedValue, nil
	}}

	values["current"] = &tengo.UserFunction{Name: "current", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: p.Current()}, nil
	}}

	values["last_completed"] = &tengo.UserFunction{Name: "last_completed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: p.LastCompleted()}, nil
	}}

	values["set_look"] = &tengo.UserFunction{Name: "set_look", Value: func(args ...tengo.Object) (tengo.Object, error) {
		look := ""
		if len(args) > 0 {
			look = objectAsString(args[0])
		}
		p.SetLook(look)
		return &tengo.String{Value: p.Look()}, nil
	}}

	values["set_flip"] = &tengo.UserFunction{Name: "set_flip", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p.SetFliped(len(args) > 0 && !args[0].IsFalsy())
		return tengo.UndefinedValue, nil
	}}

	values["set_speed"] = &tengo.UserFunction{Name: "set_speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := objectAsFloat(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		p.SetSpeed(v)
		return tengo.TrueValue, nil
	}}

	values["key_point"] = &tengo.UserFunction{Name: "key_point", Value: func(args ...tengo.Object) (tengo.Object, error) {
		path := ""
		if len(args) > 0 {
			path = objectAsString(args[0])
		}
		pt := p.KeyPoint(path)
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: pt.X}, &tengo.Float{Value: pt.Y}}}, nil
	}}

	values["contains_point"] = &tengo.UserFunction{Name: "contains_point", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return &tengo.String{Value: ""}, nil
		}
		x, okX := objectAsFloat(args[0])
		y, okY := objectAsFloat(args[1])
		if !okX || !okY {
			return &tengo.String{Value: ""}, nil
		}
		return &tengo.String{Value: p.ContainsPoint(x, y)}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
