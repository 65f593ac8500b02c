package mute

import "fmt"

// Outcome reports what a rebind attempt found.
type Outcome uint8

const (
	// OutcomeBound means a default endpoint was acquired and subscribed.
	OutcomeBound Outcome = iota + 1
	// OutcomeNoDevice means the platform has no default endpoint right now;
	// the binding is left empty.
	OutcomeNoDevice
)

// Binding owns the device and volume control handles of at most one output
// device. It is created empty and replaced wholesale on every rebind: old
// handles are released before new ones are acquired. All methods run on the
// pump goroutine.
type Binding struct {
	token  Token
	post   Poster
	device Device
	volume VolumeControl
}

func NewBinding(token Token, post Poster) *Binding {
	return &Binding{token: token, post: post}
}

// Bound reports whether a device is currently held.
func (b *Binding) Bound() bool {
	return b.volume != nil
}

// Rebind releases the current handles and binds the platform's current
// default render endpoint, subscribing a fresh volume-changed callback
// against the new control. On any error the binding is left empty with all
// partially acquired handles released.
func (b *Binding) Rebind(enum Enumerator) (Outcome, error) {
	b.Release()

	dev, err := enum.DefaultRenderEndpoint()
	if err == ErrNoDevice {
		return OutcomeNoDevice, nil
	}
	if err != nil {
		return 0, fmt.Errorf("default render endpoint: %w", err)
	}

	vol, err := dev.ActivateVolumeControl()
	if err != nil {
		dev.Close()
		return 0, fmt.Errorf("activate volume control: %w", err)
	}

	cb := NewVolumeChangedCallback(b.post, b.token)
	if err := vol.SubscribeVolumeChanged(cb); err != nil {
		// The platform never took the implicit reference.
		cb.Release()
		vol.Close()
		dev.Close()
		return 0, fmt.Errorf("subscribe volume changes: %w", err)
	}

	b.device = dev
	b.volume = vol
	return OutcomeBound, nil
}

// Mute drives the bound device's master level to zero, tagged with the
// process identity token.
func (b *Binding) Mute() error {
	if b.volume == nil {
		return ErrUnbound
	}
	if err := b.volume.SetMuteLevel(0, b.token); err != nil {
		return fmt.Errorf("set mute level: %w", err)
	}
	return nil
}

// Release drops the current handles, volume control first so its callback
// subscription dies with it, then the device.
func (b *Binding) Release() {
	if b.volume != nil {
		b.volume.Close()
		b.volume = nil
	}
	if b.device != nil {
		b.device.Close()
		b.device = nil
	}
}
