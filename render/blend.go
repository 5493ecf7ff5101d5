package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/skeleton"
)

// BlendFactor is a GPU blend factor with straight-alpha semantics.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstColor
	BlendInvDstColor
	BlendDstAlpha
	BlendInvDstAlpha
)

func (f BlendFactor) String() string {
	switch f {
	case BlendZero:
		return "Zero"
	case BlendOne:
		return "One"
	case BlendSrcColor:
		return "SrcColor"
	case BlendInvSrcColor:
		return "InvSrcColor"
	case BlendSrcAlpha:
		return "SrcAlpha"
	case BlendInvSrcAlpha:
		return "InvSrcAlpha"
	case BlendDstColor:
		return "DstColor"
	case BlendInvDstColor:
		return "InvDstColor"
	case BlendDstAlpha:
		return "DstAlpha"
	case BlendInvDstAlpha:
		return "InvDstAlpha"
	default:
		return "Unknown"
	}
}

// BlendFunc pairs source and destination factors.
type BlendFunc struct {
	Src, Dst BlendFactor
}

// BlendOpaque replaces the destination.
var BlendOpaque = BlendFunc{Src: BlendOne, Dst: BlendZero}

// BlendFuncFor maps a slot blend mode to its blend function.
func BlendFuncFor(mode skeleton.BlendMode) BlendFunc {
	switch mode {
	case skeleton.BlendNormal:
		return BlendFunc{Src: BlendSrcAlpha, Dst: BlendInvSrcAlpha}
	case skeleton.BlendAdditive:
		return BlendFunc{Src: BlendSrcAlpha, Dst: BlendOne}
	case skeleton.BlendMultiply:
		return BlendFunc{Src: BlendDstColor, Dst: BlendInvSrcAlpha}
	case skeleton.BlendScreen:
		return BlendFunc{Src: BlendOne, Dst: BlendInvSrcColor}
	default:
		return BlendOpaque
	}
}

// ToEbiten converts the function for ebiten, whose images hold premultiplied
// alpha: a SrcAlpha source factor becomes One.
func (f BlendFunc) ToEbiten() ebiten.Blend {
	src := f.Src
	if src == BlendSrcAlpha {
		src = BlendOne
	}
	s, d := ebitenFactor(src), ebitenFactor(f.Dst)
	return ebiten.Blend{
		BlendFactorSourceRGB:        s,
		BlendFactorSourceAlpha:      s,
		BlendFactorDestinationRGB:   d,
		BlendFactorDestinationAlpha: d,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

func ebitenFactor(f BlendFactor) ebiten.BlendFactor {
	switch f {
	case BlendZero:
		return ebiten.BlendFactorZero
	case BlendOne:
		return ebiten.BlendFactorOne
	case BlendSrcColor:
		return ebiten.BlendFactorSourceColor
	case BlendInvSrcColor:
		return ebiten.BlendFactorOneMinusSourceColor
	case BlendSrcAlpha:
		return ebiten.BlendFactorSourceAlpha
	case BlendInvSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case BlendDstColor:
		return ebiten.BlendFactorDestinationColor
	case BlendInvDstColor:
		return ebiten.BlendFactorOneMinusDestinationColor
	case BlendDstAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case BlendInvDstAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	default:
		return ebiten.BlendFactorDefault
	}
}
