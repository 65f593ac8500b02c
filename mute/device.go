package mute

import "errors"

var (
	// ErrNoDevice reports that the platform currently has no default render
	// endpoint. This is a normal condition, not a failure.
	ErrNoDevice = errors.New("mute: no default render endpoint")
	// ErrUnbound reports a control operation with no endpoint bound.
	ErrUnbound = errors.New("mute: no endpoint bound")
	// ErrUnsupported reports that no endpoint backend exists for this
	// platform.
	ErrUnsupported = errors.New("mute: platform not supported")
)

// Enumerator is the platform device enumerator capability.
type Enumerator interface {
	// DefaultRenderEndpoint returns a handle on the current default output
	// device, or ErrNoDevice when the platform has none. The caller owns the
	// handle and must Close it.
	DefaultRenderEndpoint() (Device, error)
	// SubscribeDefaultChanged hands cb to the platform, which takes over the
	// callback's implicit reference. If registration fails, the reference
	// never changed hands and the caller must Release it.
	SubscribeDefaultChanged(cb *Callback) error
	Close() error
}

// Device is one audio output device, exclusively owned by its holder.
type Device interface {
	// ActivateVolumeControl obtains the volume control of this device. The
	// caller owns the control and must Close it before closing the device.
	ActivateVolumeControl() (VolumeControl, error)
	Close() error
}

// VolumeControl drives the master output level of one device.
type VolumeControl interface {
	// SetMuteLevel sets the master level, tagging the command so the
	// resulting notification can be recognized as self-inflicted.
	SetMuteLevel(level float32, tag Token) error
	// SubscribeVolumeChanged hands cb to the platform; reference semantics
	// match Enumerator.SubscribeDefaultChanged.
	SubscribeVolumeChanged(cb *Callback) error
	// Close releases the control along with the platform's reference to any
	// subscribed callback, so a stale subscription can never deliver into
	// the next binding.
	Close() error
}
