package tray

import (
	"bytes"
	"image/png"
	"testing"
)

func TestIconIsDecodablePNG(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(iconPNG))
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("icon is %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestSpeakerGlyphShape(t *testing.T) {
	if !speakerCovers(0.25, 0.5) {
		t.Fatal("driver box center not covered")
	}
	if !speakerCovers(0.6, 0.5) {
		t.Fatal("cone center not covered")
	}
	if speakerCovers(0.6, 0.1) {
		t.Fatal("area above cone should be empty")
	}
	if speakerCovers(0.05, 0.5) {
		t.Fatal("left margin should be empty")
	}
}
