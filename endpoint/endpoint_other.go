//go:build !linux && !windows

package endpoint

import "alwaysmute/mute"

// BackendName identifies the platform backend in diagnostics.
const BackendName = "none"

func New() (mute.Enumerator, error) {
	return nil, mute.ErrUnsupported
}
