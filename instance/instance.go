// Package instance enforces the single-instance rule: at most one
// AlwaysMute process per login session.
package instance

import "errors"

// ErrAlreadyRunning means another process in this session holds the guard.
var ErrAlreadyRunning = errors.New("instance: already running")
