package dialog

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// golden is the byte-exact expected record for the two-control license
// dialog: header, menu/class ordinals, title, font, then the OK button item
// and the rich text item.
var golden = []byte{
	0xc8, 0x00, 0xc8, 0x90, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00,
	0x00, 0x00, 0xf9, 0x00, 0x98, 0x00, 0x00, 0x00, 0x00, 0x00, 0x4c, 0x00,
	0x69, 0x00, 0x63, 0x00, 0x65, 0x00, 0x6e, 0x00, 0x73, 0x00, 0x65, 0x00,
	0x00, 0x00, 0x08, 0x00, 0x4d, 0x00, 0x53, 0x00, 0x20, 0x00, 0x53, 0x00,
	0x68, 0x00, 0x65, 0x00, 0x6c, 0x00, 0x6c, 0x00, 0x20, 0x00, 0x44, 0x00,
	0x6c, 0x00, 0x67, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x10,
	0x00, 0x00, 0x00, 0x00, 0xc0, 0x00, 0x83, 0x00, 0x32, 0x00, 0x0e, 0x00,
	0x01, 0x00, 0xff, 0xff, 0x80, 0x00, 0x4f, 0x00, 0x4b, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x04, 0x08, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00,
	0x07, 0x00, 0x07, 0x00, 0xeb, 0x00, 0x76, 0x00, 0x02, 0x00, 0x52, 0x00,
	0x69, 0x00, 0x63, 0x00, 0x68, 0x00, 0x45, 0x00, 0x64, 0x00, 0x69, 0x00,
	0x74, 0x00, 0x32, 0x00, 0x30, 0x00, 0x57, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00,
}

func TestTemplateMatchesGolden(t *testing.T) {
	got := Template()
	if len(got) != len(golden) {
		t.Fatalf("template length = %d, want %d", len(got), len(golden))
	}
	if !bytes.Equal(got, golden) {
		for i := range got {
			if got[i] != golden[i] {
				t.Fatalf("template differs at offset %d: got 0x%02x, want 0x%02x", i, got[i], golden[i])
			}
		}
	}
}

func TestTemplateSharedInstance(t *testing.T) {
	a := Template()
	b := Template()
	if &a[0] != &b[0] {
		t.Fatal("template rebuilt on second call")
	}
}

// The padding formula advances by the current misalignment, which only lands
// on a proper boundary because of this specific field order. Pin the item
// header offsets it produces.
func TestItemHeadersDwordAligned(t *testing.T) {
	tmpl := Template()

	wantItems := []struct {
		offset int
		style  uint32
		id     uint16
	}{
		{68, bsDefPushButton | wsVisible, ButtonID},
		{100, esMultiline | esReadOnly | wsVisible, TextID},
	}
	for _, item := range wantItems {
		if item.offset%4 != 0 {
			t.Fatalf("item offset %d not DWORD aligned", item.offset)
		}
		style := binary.LittleEndian.Uint32(tmpl[item.offset:])
		if style != item.style {
			t.Fatalf("item at %d: style = %#x, want %#x", item.offset, style, item.style)
		}
		id := binary.LittleEndian.Uint16(tmpl[item.offset+16:])
		if id != item.id {
			t.Fatalf("item at %d: id = %d, want %d", item.offset, id, item.id)
		}
	}
}

func TestHeaderFields(t *testing.T) {
	tmpl := Template()
	if cdit := binary.LittleEndian.Uint16(tmpl[8:]); cdit != 2 {
		t.Fatalf("control count = %d, want 2", cdit)
	}
	cx := int16(binary.LittleEndian.Uint16(tmpl[14:]))
	cy := int16(binary.LittleEndian.Uint16(tmpl[16:]))
	if cx != 249 || cy != 152 {
		t.Fatalf("dialog size = %dx%d, want 249x152", cx, cy)
	}
}

func TestBuilderOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on scratch overflow")
		}
	}()
	b := &builder{}
	b.trailString(strings.Repeat("x", scratchSize))
}

func TestBuilderAlignLeavesZeroFiller(t *testing.T) {
	b := &builder{}
	b.u16(0xFFFF)
	b.align(4)
	if b.used != 4 {
		t.Fatalf("cursor at %d after 2-byte write and align(4), want 4", b.used)
	}
	if b.buf[2] != 0 || b.buf[3] != 0 {
		t.Fatal("padding bytes not zero")
	}
}

func TestNoticeLinksLicenseURL(t *testing.T) {
	if !strings.Contains(Notice, NoticeURL) {
		t.Fatal("notice does not reference the license URL")
	}
}
