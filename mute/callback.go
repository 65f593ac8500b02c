package mute

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

// Capability identifies a callback surface a platform can ask for via Query.
type Capability uint32

const (
	// CapBase is the identity capability every callback answers to.
	CapBase Capability = iota
	// CapDefaultChanged is the default-device-changed notification surface.
	CapDefaultChanged
	// CapVolumeChanged is the volume-changed notification surface.
	CapVolumeChanged
)

func (c Capability) String() string {
	switch c {
	case CapBase:
		return "base"
	case CapDefaultChanged:
		return "default-changed"
	case CapVolumeChanged:
		return "volume-changed"
	default:
		return "unknown"
	}
}

// Flow and Role mirror the platform's notion of which device slot changed.
// Only render/console changes are relevant to this process.
type Flow uint8

const (
	FlowRender Flow = iota
	FlowCapture
)

type Role uint8

const (
	RoleConsole Role = iota
	RoleMultimedia
	RoleCommunications
)

var ErrNoCapability = errors.New("mute: no such capability")

// refsPoison replaces the counter once the callback is destroyed so any late
// retain or release trips the same fatal checks a live miscount would.
const refsPoison = math.MinInt64 / 2

// Callback is a reference-counted notification receiver. It is handed to a
// platform subscription exactly once, already carrying the one reference the
// platform now owns; from then on its lifetime is governed purely by
// Retain/Release calls the platform makes, not by its creator. When the count
// drops to zero the callback destroys itself synchronously on the releasing
// goroutine.
//
// Notification entry points do only cheap, non-blocking work: a relevance
// check and a single Post. They never call back into the device API, and no
// failure escapes them uncaught.
type Callback struct {
	refs       atomic.Int64
	capability Capability
	post       Poster
	token      Token // echo suppression, volume callbacks only
	msg        Message
	onDestroy  func()
}

// NewDefaultChangedCallback returns a callback that posts MsgRebind whenever
// the default render/console endpoint changes. The returned callback already
// holds the platform's implicit reference; if subscription registration
// fails, the caller must Release it.
func NewDefaultChangedCallback(post Poster) *Callback {
	cb := &Callback{capability: CapDefaultChanged, post: post, msg: MsgRebind}
	cb.refs.Store(1)
	return cb
}

// NewVolumeChangedCallback returns a callback that posts MsgMute for volume
// changes not tagged with token. Reference semantics match
// NewDefaultChangedCallback.
func NewVolumeChangedCallback(post Poster, token Token) *Callback {
	cb := &Callback{capability: CapVolumeChanged, post: post, token: token, msg: MsgMute}
	cb.refs.Store(1)
	return cb
}

// Retain increments the reference count and returns the new count. A count
// that is no longer positive means an overflow or a retain after destruction;
// both are broken invariants, not runtime conditions, and abort the caller.
func (c *Callback) Retain() int64 {
	n := c.refs.Add(1)
	if n <= 0 {
		panic(fmt.Sprintf("mute: callback retain on dead or overflowed refcount (%d)", n))
	}
	return n
}

// Release decrements the reference count, destroying the callback when it
// reaches zero, and returns the new count. Releasing below zero is a
// double-release defect and aborts the caller.
func (c *Callback) Release() int64 {
	n := c.refs.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("mute: callback release without matching retain (%d)", n))
	}
	if n == 0 {
		c.destroy()
	}
	return n
}

func (c *Callback) destroy() {
	c.refs.Store(refsPoison)
	if c.onDestroy != nil {
		c.onDestroy()
		c.onDestroy = nil
	}
	c.post = nil
}

// Query returns a retained reference to the callback when capability is
// CapBase or the one notification capability this callback implements;
// otherwise it reports ErrNoCapability without side effects.
func (c *Callback) Query(capability Capability) (*Callback, error) {
	if capability != CapBase && capability != c.capability {
		return nil, ErrNoCapability
	}
	c.Retain()
	return c, nil
}

// Capability returns the notification capability this callback implements.
func (c *Callback) Capability() Capability {
	return c.capability
}

// OnDefaultChanged is the platform entry point for default-device changes.
// Changes outside the render/console slot are ignored. Any internal failure
// is converted to an error return here; nothing may unwind through a
// platform callback boundary.
func (c *Callback) OnDefaultChanged(flow Flow, role Role) (err error) {
	defer rejectPanics(&err)
	if c.capability != CapDefaultChanged {
		return ErrNoCapability
	}
	if flow != FlowRender || role != RoleConsole {
		return nil
	}
	return c.post.Post(c.msg)
}

// OnVolumeChanged is the platform entry point for volume changes on the
// subscribed control. Changes tagged with our own token are our mute landing
// and are dropped.
func (c *Callback) OnVolumeChanged(tag Token) (err error) {
	defer rejectPanics(&err)
	if c.capability != CapVolumeChanged {
		return ErrNoCapability
	}
	if tag == c.token {
		return nil
	}
	return c.post.Post(c.msg)
}

func rejectPanics(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("mute: notification rejected: %v", r)
	}
}
