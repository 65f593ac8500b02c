//go:build windows

package main

import (
	"testing"

	"alwaysmute/dialog"
)

// The rich edit control only sends EN_LINK when the event mask enables it;
// ENM_LINK lives in the high byte of the mask, not the low one.
func TestLinkEventMaskEnablesLinkNotifications(t *testing.T) {
	if enmLink != 0x04000000 {
		t.Fatalf("enmLink = %#x, want ENM_LINK (0x04000000)", enmLink)
	}
}

func TestLinkClicked(t *testing.T) {
	textID := uintptr(dialog.TextID)
	click := &enLinkNotify{Hdr: nmhdr{Code: enLink}, Msg: wmLButtonUp}

	if !linkClicked(textID, click) {
		t.Error("left click on text control link not recognized")
	}
	if linkClicked(uintptr(dialog.ButtonID), click) {
		t.Error("notification from another control must be ignored")
	}
	hover := &enLinkNotify{Hdr: nmhdr{Code: enLink}, Msg: 0x0200} // WM_MOUSEMOVE
	if linkClicked(textID, hover) {
		t.Error("hover over link must not open the URL")
	}
	scroll := &enLinkNotify{Hdr: nmhdr{Code: 0x0605}, Msg: wmLButtonUp} // EN_SCROLL
	if linkClicked(textID, scroll) {
		t.Error("non-link notification must be ignored")
	}
}
