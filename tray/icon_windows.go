//go:build windows

package tray

import (
	"bytes"
	"encoding/binary"
)

// trayIcon wraps the PNG in a single-image ICO container, which is what the
// Windows tray backend expects.
func trayIcon() []byte {
	var buf bytes.Buffer
	// ICONDIR: reserved, type 1 (icon), one image.
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	// ICONDIRENTRY.
	buf.WriteByte(32)                                               // width
	buf.WriteByte(32)                                               // height
	buf.WriteByte(0)                                                // palette
	buf.WriteByte(0)                                                // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1))              // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32))             // bpp
	binary.Write(&buf, binary.LittleEndian, uint32(len(iconPNG)))   // size
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))           // offset
	buf.Write(iconPNG)
	return buf.Bytes()
}
