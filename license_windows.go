//go:build windows

package main

import (
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"alwaysmute/dialog"
	"alwaysmute/log"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	shell32  = windows.NewLazySystemDLL("shell32.dll")
	riched20 = windows.NewLazySystemDLL("riched20.dll")

	procDialogBoxIndirectParamW = user32.NewProc("DialogBoxIndirectParamW")
	procEndDialog               = user32.NewProc("EndDialog")
	procGetDlgItem              = user32.NewProc("GetDlgItem")
	procSendMessageW            = user32.NewProc("SendMessageW")
	procShellExecuteW           = shell32.NewProc("ShellExecuteW")
)

const (
	wmInitDialog = 0x0110
	wmCommand    = 0x0111
	wmNotify     = 0x004E
	wmClose      = 0x0010
	wmSetText    = 0x000C
	wmUser       = 0x0400

	emSetEventMask  = wmUser + 69
	emAutoURLDetect = wmUser + 91
	enLink          = 0x070B
	enmLink         = 0x04000000

	wmLButtonUp  = 0x0202
	swShowNormal = 1
)

// nmhdr and enLinkNotify mirror the notification structs the rich edit
// control sends with WM_NOTIFY.
type nmhdr struct {
	HwndFrom uintptr
	IDFrom   uintptr
	Code     uint32
}

type enLinkNotify struct {
	Hdr    nmhdr
	Msg    uint32
	WParam uintptr
	LParam uintptr
	CpMin  int32
	CpMax  int32
}

// licenseOpen guards the single dialog slot: clicking License while the
// dialog is up is a no-op.
var licenseOpen atomic.Bool

var licenseProc = syscall.NewCallback(func(hwnd, msg, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmInitDialog:
		text, _, _ := procGetDlgItem.Call(hwnd, uintptr(dialog.TextID))
		procSendMessageW.Call(text, emAutoURLDetect, 1, 0)
		procSendMessageW.Call(text, emSetEventMask, 0, enmLink)
		notice, err := windows.UTF16PtrFromString(dialog.Notice)
		if err == nil {
			procSendMessageW.Call(text, wmSetText, 0, uintptr(unsafe.Pointer(notice)))
		}
		return 1
	case wmCommand:
		if uint16(wparam&0xFFFF) == dialog.ButtonID {
			procEndDialog.Call(hwnd, 0)
			return 1
		}
	case wmClose:
		procEndDialog.Call(hwnd, 0)
		return 1
	case wmNotify:
		link := (*enLinkNotify)(unsafe.Pointer(lparam))
		if linkClicked(wparam, link) {
			openURL(dialog.NoticeURL)
			return 1
		}
	}
	return 0
})

// linkClicked reports whether a WM_NOTIFY is a completed left click on a URL
// inside the license text control. Notifications from any other control are
// ignored.
func linkClicked(wparam uintptr, link *enLinkNotify) bool {
	if uint16(wparam&0xFFFF) != dialog.TextID {
		return false
	}
	return link.Hdr.Code == enLink && link.Msg == wmLButtonUp
}

// showLicense runs the modal license dialog. The rich edit class must be
// registered before the template instantiates it, so riched20.dll is loaded
// first.
func showLicense() {
	if !licenseOpen.CompareAndSwap(false, true) {
		return
	}
	defer licenseOpen.Store(false)

	if err := riched20.Load(); err != nil {
		log.Errorf("load riched20: %v", err)
		return
	}
	tmpl := dialog.Template()
	ret, _, err := procDialogBoxIndirectParamW.Call(
		0,
		uintptr(unsafe.Pointer(&tmpl[0])),
		0,
		licenseProc,
		0,
	)
	if int(ret) == -1 {
		log.Errorf("license dialog: %v", err)
	}
}

func openURL(url string) {
	u, err := windows.UTF16PtrFromString(url)
	if err != nil {
		return
	}
	verb, _ := windows.UTF16PtrFromString("open")
	procShellExecuteW.Call(0, uintptr(unsafe.Pointer(verb)), uintptr(unsafe.Pointer(u)), 0, 0, swShowNormal)
}
