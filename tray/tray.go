// Package tray puts the mute indicator in the system notification area with
// a two-item menu: License and Exit.
package tray

import (
	"sync"

	"fyne.io/systray"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	licenseFn func()
)

// OnLicense registers the handler invoked when the License menu item is
// clicked. It must be set before Init.
func OnLicense(fn func()) { licenseFn = fn }

// Init starts the tray icon. It blocks the calling goroutine until the tray
// backend is ready, then returns a channel closed when the user picks Exit.
func Init() <-chan struct{} {
	ready := make(chan struct{})
	go systray.Run(func() {
		onReady()
		close(ready)
	}, nil)
	<-ready
	return quitCh
}

// Quit removes the tray icon and unblocks whoever waits on Init's channel.
func Quit() {
	closeOnce.Do(func() { close(quitCh) })
	systray.Quit()
}

func onReady() {
	systray.SetIcon(trayIcon())
	systray.SetTitle("AlwaysMute")
	systray.SetTooltip("AlwaysMute – output stays muted")

	mLicense := systray.AddMenuItem("License", "Show license information")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit AlwaysMute")

	go func() {
		for {
			select {
			case <-mLicense.ClickedCh:
				if licenseFn != nil {
					licenseFn()
				}
			case <-mExit.ClickedCh:
				Quit()
				return
			case <-quitCh:
				return
			}
		}
	}()
}
