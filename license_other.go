//go:build !windows

package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync/atomic"

	"alwaysmute/dialog"
	"alwaysmute/log"
)

var licenseOpen atomic.Bool

// showLicense prints the notice and opens the license page. Non-Windows
// builds have no native dialog host, so the browser carries the text.
func showLicense() {
	if !licenseOpen.CompareAndSwap(false, true) {
		return
	}
	defer licenseOpen.Store(false)

	fmt.Println(dialog.Notice)
	if err := openURL(dialog.NoticeURL); err != nil {
		log.Errorf("open license url: %v", err)
	}
}

func openURL(url string) error {
	if runtime.GOOS == "darwin" {
		return exec.Command("open", url).Start()
	}
	return exec.Command("xdg-open", url).Start()
}
