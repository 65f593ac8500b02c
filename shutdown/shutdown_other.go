//go:build !windows

package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify subscribes ch to the signals that should end the session.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
