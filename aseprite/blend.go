package aseprite

import "math"

// BlendMode is the layer blend mode.
type BlendMode WORD

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAddition
	BlendSubtract
	BlendDivide
)

// channelFunc blends one backdrop channel b with one source channel s.
type channelFunc func(b, s int) int

var channelFuncs = map[BlendMode]channelFunc{
	BlendMultiply:   blendMultiply,
	BlendScreen:     blendScreen,
	BlendOverlay:    func(b, s int) int { return blendHardLight(s, b) },
	BlendDarken:     func(b, s int) int { return min(b, s) },
	BlendLighten:    func(b, s int) int { return max(b, s) },
	BlendColorDodge: blendColorDodge,
	BlendColorBurn:  blendColorBurn,
	BlendHardLight:  blendHardLight,
	BlendSoftLight:  blendSoftLight,
	BlendDifference: func(b, s int) int { return abs(b - s) },
	BlendExclusion:  func(b, s int) int { return b + s - 2*mulUn8(b, s) },
	BlendAddition:   func(b, s int) int { return min(b+s, 255) },
	BlendSubtract:   func(b, s int) int { return max(b-s, 0) },
	BlendDivide:     blendDivide,
}

// blender returns the compositing function for mode. The HSL modes are not
// implemented.
func blender(mode BlendMode) (func(dst, src [4]uint8, opacity int) [4]uint8, error) {
	if mode == BlendNormal {
		return blendNormal, nil
	}
	f, ok := channelFuncs[mode]
	if !ok {
		return nil, unsupported("blend mode %d", mode)
	}
	return func(dst, src [4]uint8, opacity int) [4]uint8 {
		if dst[3] != 0 {
			src[0] = uint8(f(int(dst[0]), int(src[0])))
			src[1] = uint8(f(int(dst[1]), int(src[1])))
			src[2] = uint8(f(int(dst[2]), int(src[2])))
		}
		return blendNormal(dst, src, opacity)
	}, nil
}

// blendNormal composites the straight-alpha src over dst with opacity in [0, 255].
func blendNormal(dst, src [4]uint8, opacity int) [4]uint8 {
	sa := mulUn8(int(src[3]), opacity)
	if sa == 0 {
		return dst
	}
	ba := int(dst[3])
	if ba == 0 {
		return [4]uint8{src[0], src[1], src[2], uint8(sa)}
	}

	ra := sa + ba - mulUn8(ba, sa)
	var out [4]uint8
	for c := range 3 {
		b, s := int(dst[c]), int(src[c])
		out[c] = uint8(b + (s-b)*sa/ra)
	}
	out[3] = uint8(ra)
	return out
}

// mulUn8 multiplies two values in [0, 255] as if they were in [0, 1].
func mulUn8(a, b int) int {
	t := a*b + 0x80
	return ((t >> 8) + t) >> 8
}

func blendMultiply(b, s int) int {
	return mulUn8(b, s)
}

func blendScreen(b, s int) int {
	return b + s - mulUn8(b, s)
}

func blendHardLight(b, s int) int {
	if s < 128 {
		return blendMultiply(b, s<<1)
	}
	return blendScreen(b, (s<<1)-255)
}

func blendColorDodge(b, s int) int {
	if b == 0 {
		return 0
	}
	s = 255 - s
	if b >= s {
		return 255
	}
	return b * 255 / s
}

func blendColorBurn(b, s int) int {
	if b == 255 {
		return 255
	}
	b = 255 - b
	if b >= s {
		return 0
	}
	return 255 - b*255/s
}

func blendSoftLight(bi, si int) int {
	b := float64(bi) / 255
	s := float64(si) / 255

	var d float64
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	} else {
		d = math.Sqrt(b)
	}

	var r float64
	if s <= 0.5 {
		r = b - (1-2*s)*b*(1-b)
	} else {
		r = b + (2*s-1)*(d-b)
	}
	return int(r*255 + 0.5)
}

func blendDivide(b, s int) int {
	if b == 0 {
		return 0
	}
	if b >= s {
		return 255
	}
	return b * 255 / s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
