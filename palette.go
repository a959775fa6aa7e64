package mandelbench

// ChannelMap holds the divisor/offset pair for one color channel of a
// palette. The mapped value is 255 - min(int(float64(255/count)/Divisor)+Offset, 255),
// where 255/count is integer division.
type ChannelMap struct {
	Divisor float64
	Offset  int
}

// Palette maps an escape count to an RGB triple. Count 0 (inside the set)
// is always black; positive counts are mapped per channel in R, G, B order.
//
// Each strategy has its own palette so the three output images are
// distinguishable at a glance. The constants are fixed; changing them
// breaks output parity with previous runs.
type Palette [3]ChannelMap

var palettes = [...]Palette{
	Sequential:    {{4, 0}, {0.8, 50}, {0.8, 50}},
	ParallelMap:   {{0.8, 50}, {4, 50}, {0.8, 50}},
	DeviceOffload: {{0.8, 50}, {0.8, 50}, {4, 50}},
}

// PaletteFor returns the palette assigned to a strategy. Unknown strategies
// get the Sequential palette.
func PaletteFor(s Strategy) Palette {
	if s < 0 || int(s) >= len(palettes) {
		return palettes[Sequential]
	}
	return palettes[s]
}

// RGB maps one escape count to an RGB triple.
func (p Palette) RGB(count uint32) (r, g, b uint8) {
	if count == 0 {
		return 0, 0, 0
	}
	base := 255 / int(count)
	return p[0].apply(base), p[1].apply(base), p[2].apply(base)
}

func (m ChannelMap) apply(base int) uint8 {
	v := int(float64(base)/m.Divisor) + m.Offset
	if v > 255 {
		v = 255
	}
	return uint8(255 - v)
}
