package common

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a straight-alpha RGBA tint with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var White = Color{R: 1, G: 1, B: 1, A: 1}

// Mul returns the componentwise product of two colors.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Lerp moves c toward o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// ToABGR packs the color as 0xAABBGGRR.
func (c Color) ToABGR() uint32 {
	return uint32(toByte(c.A))<<24 | uint32(toByte(c.B))<<16 | uint32(toByte(c.G))<<8 | uint32(toByte(c.R))
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: toByte(c.A)}
}

// ColorFromABGR unpacks a 0xAABBGGRR value.
func ColorFromABGR(v uint32) Color {
	return Color{
		R: float32(v&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32((v>>16)&0xff) / 255,
		A: float32((v>>24)&0xff) / 255,
	}
}

// ParseHexColor parses "rrggbb" or "rrggbbaa". An empty string is white.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return White, nil
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return White, fmt.Errorf("color %q: want rrggbb or rrggbbaa", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return White, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		R: float32((v>>24)&0xff) / 255,
		G: float32((v>>16)&0xff) / 255,
		B: float32((v>>8)&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
