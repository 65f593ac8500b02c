// Package dialog assembles the license dialog's binary resource record in
// the native dialog-template layout: a fixed header followed by
// variably-sized, alignment-sensitive trailing fields, then one item record
// per control. The record is built once and never parsed back.
package dialog

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unicode/utf16"
)

// Control ids referenced by the dialog procedure.
const (
	ButtonID uint16 = 1
	TextID   uint16 = 2
)

// Window and control styles, as the native headers define them.
const (
	dsSetFont    = 0x00000040
	dsModalFrame = 0x00000080
	dsFixedSys   = 0x00000008
	wsPopup      = 0x80000000
	wsCaption    = 0x00C00000
	wsSysMenu    = 0x00080000
	wsVisible    = 0x10000000

	bsDefPushButton = 0x00000001
	esMultiline     = 0x00000004
	esReadOnly      = 0x00000800
)

// richEditClass is the window class registered by riched20.dll.
const richEditClass = "RichEdit20W"

// buttonOrdinal is the ordinal window class of a push button; ordinalMarker
// announces that an ordinal follows instead of a class name.
const (
	ordinalMarker uint16 = 0xFFFF
	buttonOrdinal uint16 = 0x0080
)

// scratchSize is a guard capacity, sized generously larger than any
// realistic template so growth without a resize trips the bounds check.
const scratchSize = 256

// builder appends little-endian fields to a fixed scratch buffer. Exceeding
// the scratch capacity is a defect, not a runtime condition: the layout grew
// without the buffer being resized.
type builder struct {
	buf  [scratchSize]byte
	used int
}

func (b *builder) grow(n int) int {
	if b.used+n >= len(b.buf) {
		panic(fmt.Sprintf("dialog: template needs %d bytes, scratch holds %d", b.used+n, len(b.buf)))
	}
	off := b.used
	b.used += n
	return off
}

func (b *builder) u16(v uint16) {
	binary.LittleEndian.PutUint16(b.buf[b.grow(2):], v)
}

func (b *builder) u32(v uint32) {
	binary.LittleEndian.PutUint32(b.buf[b.grow(4):], v)
}

func (b *builder) i16(v int16) {
	b.u16(uint16(v))
}

// align advances the cursor by its current misalignment, leaving zero
// filler. This only lands on an alignment-of-`alignment` boundary when the
// pre-padding offset is already a multiple of the previous field's size; the
// golden test pins that it holds at every call site of this layout.
func (b *builder) align(alignment int) {
	b.grow(b.used % alignment)
}

// trail16 appends a 16-bit trailing field on a 2-byte boundary.
func (b *builder) trail16(v uint16) {
	b.align(2)
	b.u16(v)
}

// trailString appends a null-terminated wide-character string on a 2-byte
// boundary.
func (b *builder) trailString(s string) {
	b.align(2)
	for _, u := range utf16.Encode([]rune(s)) {
		b.u16(u)
	}
	b.u16(0)
}

// item appends a control item header on a 4-byte boundary.
func (b *builder) item(style uint32, x, y, cx, cy int16, id uint16) {
	b.align(4)
	b.u32(style)
	b.u32(0) // extended style
	b.i16(x)
	b.i16(y)
	b.i16(cx)
	b.i16(cy)
	b.u16(id)
}

var (
	buildOnce sync.Once
	template  []byte
)

// Template returns the finished license dialog record. The slice is built at
// most once per process and is shared: callers must not modify it.
func Template() []byte {
	buildOnce.Do(build)
	return template
}

func build() {
	b := &builder{}

	// Dialog header: two controls, sized in dialog units.
	b.u32(dsSetFont | dsModalFrame | dsFixedSys | wsPopup | wsCaption | wsSysMenu | wsVisible)
	b.u32(0) // extended style
	b.u16(2) // control count
	b.i16(0)
	b.i16(0)
	b.i16(249)
	b.i16(152)
	b.trail16(0) // no menu
	b.trail16(0) // default dialog class
	b.trailString("License")
	b.trail16(8) // font point size
	b.trailString("MS Shell Dlg")

	// OK button.
	b.item(bsDefPushButton|wsVisible, 192, 131, 50, 14, ButtonID)
	b.trail16(ordinalMarker)
	b.trail16(buttonOrdinal)
	b.trailString("OK")
	b.trail16(0) // no creation data

	// Read-only rich text control holding the notice.
	b.item(esMultiline|esReadOnly|wsVisible, 7, 7, 235, 118, TextID)
	b.trailString(richEditClass)
	b.trail16(0) // empty title
	b.trail16(0) // no creation data

	out := make([]byte, b.used)
	copy(out, b.buf[:b.used])
	template = out
}
