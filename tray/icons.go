package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var iconPNG []byte

func init() {
	iconPNG = renderMuteIcon(32)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderMuteIcon draws a speaker with a diagonal strike on a transparent
// square of the given size.
func renderMuteIcon(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	body := color.RGBA{R: 230, G: 230, B: 230, A: 255}
	strike := color.RGBA{R: 255, G: 59, B: 48, A: 255}

	s := float64(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)/s, float64(y)/s
			if speakerCovers(fx, fy) {
				img.SetRGBA(x, y, body)
			}
		}
	}
	// The strike goes over the speaker, lower-left to upper-right.
	w := 2.0 / s
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)/s, float64(y)/s
			d := fx + fy - 1
			if d > -w && d < w && fx > 0.1 && fx < 0.9 {
				img.SetRGBA(x, y, strike)
			}
		}
	}
	return encodePNG(img)
}

// speakerCovers reports whether the unit-square point lies inside the
// speaker glyph: a box for the driver plus a triangle for the cone.
func speakerCovers(x, y float64) bool {
	if x >= 0.15 && x < 0.35 && y >= 0.38 && y < 0.62 {
		return true
	}
	if x >= 0.35 && x < 0.62 {
		// Cone edges widen linearly from the box to the rim.
		t := (x - 0.35) / 0.27
		top := 0.38 - t*0.18
		bottom := 0.62 + t*0.18
		return y >= top && y < bottom
	}
	return false
}
