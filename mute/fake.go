package mute

import (
	"errors"
	"sync"
)

// Fakes for the platform capability interfaces. They count every acquire and
// release so tests (and the doctor dry run) can assert handle balance, and
// they deliver notifications synchronously through the real callback entry
// points.

type FakeEnumerator struct {
	mu      sync.Mutex
	def     *FakeDevice
	enumErr error
	subErr  error
	cb      *Callback
	closed  bool
}

func NewFakeEnumerator() *FakeEnumerator {
	return &FakeEnumerator{}
}

// SetDefault installs the device handed out by DefaultRenderEndpoint; nil
// means no default device.
func (e *FakeEnumerator) SetDefault(d *FakeDevice) {
	e.mu.Lock()
	e.def = d
	e.mu.Unlock()
}

// FailEnumeration makes DefaultRenderEndpoint return err until cleared.
func (e *FakeEnumerator) FailEnumeration(err error) {
	e.mu.Lock()
	e.enumErr = err
	e.mu.Unlock()
}

// FailSubscribe makes SubscribeDefaultChanged return err.
func (e *FakeEnumerator) FailSubscribe(err error) {
	e.mu.Lock()
	e.subErr = err
	e.mu.Unlock()
}

func (e *FakeEnumerator) DefaultRenderEndpoint() (Device, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enumErr != nil {
		return nil, e.enumErr
	}
	if e.def == nil {
		return nil, ErrNoDevice
	}
	e.def.open()
	return e.def, nil
}

func (e *FakeEnumerator) SubscribeDefaultChanged(cb *Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subErr != nil {
		return e.subErr
	}
	e.cb = cb
	return nil
}

// FireDefaultChanged simulates a platform default-device notification on the
// subscribed callback.
func (e *FakeEnumerator) FireDefaultChanged(flow Flow, role Role) error {
	e.mu.Lock()
	cb := e.cb
	e.mu.Unlock()
	if cb == nil {
		return errors.New("mute: no default-changed subscriber")
	}
	return cb.OnDefaultChanged(flow, role)
}

func (e *FakeEnumerator) Close() error {
	e.mu.Lock()
	cb := e.cb
	e.cb = nil
	closed := e.closed
	e.closed = true
	e.mu.Unlock()
	if closed {
		return errors.New("mute: fake enumerator closed twice")
	}
	if cb != nil {
		cb.Release()
	}
	return nil
}

// FakeDevice counts opens, closes and volume control activity. Balanced
// reports whether every acquire has a matching release.
type FakeDevice struct {
	Name string

	mu           sync.Mutex
	opens        int
	closes       int
	activations  int
	volumeCloses int
	activateErr  error
	setErr       error
	subErr       error
	lastVolume   *FakeVolume
}

func NewFakeDevice(name string) *FakeDevice {
	return &FakeDevice{Name: name}
}

func (d *FakeDevice) open() {
	d.mu.Lock()
	d.opens++
	d.mu.Unlock()
}

func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	if d.closes > d.opens {
		return errors.New("mute: fake device closed more often than opened")
	}
	return nil
}

// FailActivate makes ActivateVolumeControl return err.
func (d *FakeDevice) FailActivate(err error) {
	d.mu.Lock()
	d.activateErr = err
	d.mu.Unlock()
}

// FailSetLevel makes SetMuteLevel on future controls return err.
func (d *FakeDevice) FailSetLevel(err error) {
	d.mu.Lock()
	d.setErr = err
	d.mu.Unlock()
}

// FailSubscribe makes SubscribeVolumeChanged on future controls return err.
func (d *FakeDevice) FailSubscribe(err error) {
	d.mu.Lock()
	d.subErr = err
	d.mu.Unlock()
}

func (d *FakeDevice) ActivateVolumeControl() (VolumeControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.activateErr != nil {
		return nil, d.activateErr
	}
	d.activations++
	v := &FakeVolume{dev: d, setErr: d.setErr, subErr: d.subErr}
	d.lastVolume = v
	return v, nil
}

// Volume returns the most recently activated control.
func (d *FakeDevice) Volume() *FakeVolume {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastVolume
}

// Balanced reports whether every open and activation has a matching close.
func (d *FakeDevice) Balanced() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens == d.closes && d.activations == d.volumeCloses
}

// Opens returns how often this device was handed out.
func (d *FakeDevice) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func (d *FakeDevice) noteVolumeClose() {
	d.mu.Lock()
	d.volumeCloses++
	d.mu.Unlock()
}

// FakeVolume records every SetMuteLevel call. Setting a level echoes a
// notification back through the subscribed callback, tagged with the
// caller's token, the way the real platform notifies all subscribers of
// every change including self-inflicted ones.
type FakeVolume struct {
	dev *FakeDevice

	mu     sync.Mutex
	closed bool
	cb     *Callback
	setErr error
	subErr error
	levels []float32
	tags   []Token
}

// FailSet makes SetMuteLevel on this control return err.
func (v *FakeVolume) FailSet(err error) {
	v.mu.Lock()
	v.setErr = err
	v.mu.Unlock()
}

func (v *FakeVolume) SetMuteLevel(level float32, tag Token) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return errors.New("mute: fake volume control used after close")
	}
	if v.setErr != nil {
		err := v.setErr
		v.mu.Unlock()
		return err
	}
	v.levels = append(v.levels, level)
	v.tags = append(v.tags, tag)
	cb := v.cb
	v.mu.Unlock()
	if cb != nil {
		cb.OnVolumeChanged(tag)
	}
	return nil
}

func (v *FakeVolume) SubscribeVolumeChanged(cb *Callback) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.subErr != nil {
		return v.subErr
	}
	v.cb = cb
	return nil
}

// Fire simulates a volume change notification with the given originator tag.
func (v *FakeVolume) Fire(tag Token) error {
	v.mu.Lock()
	cb := v.cb
	closed := v.closed
	v.mu.Unlock()
	if closed || cb == nil {
		return errors.New("mute: no volume subscriber")
	}
	return cb.OnVolumeChanged(tag)
}

// SetCalls returns the recorded levels and tags.
func (v *FakeVolume) SetCalls() ([]float32, []Token) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float32(nil), v.levels...), append([]Token(nil), v.tags...)
}

func (v *FakeVolume) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return errors.New("mute: fake volume control closed twice")
	}
	v.closed = true
	cb := v.cb
	v.cb = nil
	v.mu.Unlock()
	v.dev.noteVolumeClose()
	if cb != nil {
		// The platform's implicit reference dies with the control.
		cb.Release()
	}
	return nil
}
