//go:build windows

package instance

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const mutexName = `Local\AlwaysMute`

// Acquire creates the session-local named mutex. If another process already
// owns it, Acquire returns ErrAlreadyRunning. The release function closes the
// handle; the system also reclaims it when the process dies.
func Acquire() (func(), error) {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return nil, fmt.Errorf("mutex name: %w", err)
	}
	h, err := windows.CreateMutex(nil, false, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("create mutex: %w", err)
	}
	return func() { windows.CloseHandle(h) }, nil
}
