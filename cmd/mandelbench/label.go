package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawLabel renders a multi-line annotation into the top-left corner of the
// image, white text over a translucent dark backing strip so it stays
// readable on both the colored and the black renders.
func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	lines := strings.Split(text, "\n")

	lineHeight := face.Metrics().Height.Ceil() + 2
	stripW := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > stripW {
			stripW = w
		}
	}
	stripW += 12
	stripH := lineHeight*len(lines) + 8

	const dim = 80 // remaining background intensity out of 255
	for y := 0; y < stripH && y < img.Bounds().Dy(); y++ {
		for x := 0; x < stripW && x < img.Bounds().Dx(); x++ {
			bg := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(uint32(bg.R) * dim / 255),
				G: uint8(uint32(bg.G) * dim / 255),
				B: uint8(uint32(bg.B) * dim / 255),
				A: 0xff,
			})
		}
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	y := face.Metrics().Ascent.Ceil() + 4
	for _, line := range lines {
		d.Dot = fixed.P(6, y)
		d.DrawString(line)
		y += lineHeight
	}
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}
