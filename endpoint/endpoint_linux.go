//go:build linux

package endpoint

import (
	"fmt"
	"net"
	"sync"

	"github.com/jfreymuth/pulse/proto"

	"alwaysmute/mute"
)

// BackendName identifies the platform backend in diagnostics.
const BackendName = "pulse"

// pulseEnumerator exposes the PulseAudio server's default sink through the
// mute capability interfaces. The native protocol has no per-command
// originator tag, so self-inflicted volume events are recognized with a
// pending self-change counter per control and re-tagged before they reach
// the callback.
type pulseEnumerator struct {
	client *proto.Client
	conn   net.Conn

	mu        sync.Mutex
	defaultCb *mute.Callback
	sinks     map[uint32]*pulseVolume
	closed    bool
}

func New() (mute.Enumerator, error) {
	client, conn, err := proto.Connect("")
	if err != nil {
		return nil, fmt.Errorf("pulse connect: %w", err)
	}

	e := &pulseEnumerator{
		client: client,
		conn:   conn,
		sinks:  make(map[uint32]*pulseVolume),
	}

	props := proto.PropList{
		"application.name": proto.PropListString("alwaysmute"),
	}
	if err := client.Request(&proto.SetClientName{Props: props}, &proto.SetClientNameReply{}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pulse handshake: %w", err)
	}

	// Events arrive on the protocol reader goroutine; the handler only
	// re-tags and forwards into the callbacks, which only post.
	client.Callback = e.onEvent
	err = client.Request(&proto.Subscribe{
		Mask: proto.SubscriptionMaskSink | proto.SubscriptionMaskServer,
	}, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("pulse subscribe: %w", err)
	}

	return e, nil
}

func (e *pulseEnumerator) onEvent(val interface{}) {
	ev, ok := val.(*proto.SubscribeEvent)
	if !ok {
		return
	}

	switch ev.Event & proto.EventFacilityMask {
	case proto.EventServer:
		// Server configuration changed; the default sink may have moved.
		e.mu.Lock()
		cb := e.defaultCb
		e.mu.Unlock()
		if cb != nil {
			cb.OnDefaultChanged(mute.FlowRender, mute.RoleConsole)
		}
	case proto.EventSink:
		if ev.Event&proto.EventTypeMask != proto.EventChange {
			return
		}
		e.mu.Lock()
		v := e.sinks[ev.Index]
		e.mu.Unlock()
		if v != nil {
			v.deliver()
		}
	}
}

func (e *pulseEnumerator) DefaultRenderEndpoint() (mute.Device, error) {
	var server proto.GetServerInfoReply
	if err := e.client.Request(&proto.GetServerInfo{}, &server); err != nil {
		return nil, fmt.Errorf("pulse server info: %w", err)
	}
	if server.DefaultSinkName == "" {
		return nil, mute.ErrNoDevice
	}

	var sink proto.GetSinkInfoReply
	err := e.client.Request(&proto.GetSinkInfo{
		SinkIndex: proto.Undefined,
		SinkName:  server.DefaultSinkName,
	}, &sink)
	if err != nil {
		return nil, fmt.Errorf("pulse sink info %q: %w", server.DefaultSinkName, err)
	}

	return &pulseDevice{
		enum:     e,
		index:    sink.SinkIndex,
		name:     server.DefaultSinkName,
		channels: len(sink.ChannelVolumes),
	}, nil
}

func (e *pulseEnumerator) SubscribeDefaultChanged(cb *mute.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("pulse enumerator closed")
	}
	e.defaultCb = cb
	return nil
}

func (e *pulseEnumerator) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	cb := e.defaultCb
	e.defaultCb = nil
	e.mu.Unlock()

	if cb != nil {
		cb.Release()
	}
	return e.conn.Close()
}

func (e *pulseEnumerator) attachSink(index uint32, v *pulseVolume) {
	e.mu.Lock()
	e.sinks[index] = v
	e.mu.Unlock()
}

func (e *pulseEnumerator) detachSink(index uint32, v *pulseVolume) {
	e.mu.Lock()
	if e.sinks[index] == v {
		delete(e.sinks, index)
	}
	e.mu.Unlock()
}

type pulseDevice struct {
	enum     *pulseEnumerator
	index    uint32
	name     string
	channels int
}

func (d *pulseDevice) ActivateVolumeControl() (mute.VolumeControl, error) {
	channels := d.channels
	if channels == 0 {
		channels = 2
	}
	return &pulseVolume{enum: d.enum, index: d.index, channels: channels}, nil
}

func (d *pulseDevice) Close() error {
	// Sinks are addressed by index; there is no handle to give back.
	return nil
}

type pulseVolume struct {
	enum     *pulseEnumerator
	index    uint32
	channels int

	mu          sync.Mutex
	cb          *mute.Callback
	lastTag     mute.Token
	pendingSelf int
	closed      bool
}

func (v *pulseVolume) SetMuteLevel(level float32, tag mute.Token) error {
	vols := make(proto.ChannelVolumes, v.channels)
	for i := range vols {
		vols[i] = uint32(float32(proto.VolumeNorm) * level)
	}

	// The server will echo this change back as a sink event without any
	// notion of who caused it; remember the tag so the echo carries it.
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return fmt.Errorf("pulse volume control closed")
	}
	v.pendingSelf++
	v.lastTag = tag
	v.mu.Unlock()

	err := v.enum.client.Request(&proto.SetSinkVolume{
		SinkIndex:      v.index,
		ChannelVolumes: vols,
	}, nil)
	if err != nil {
		v.mu.Lock()
		v.pendingSelf--
		v.mu.Unlock()
		return fmt.Errorf("pulse set sink volume: %w", err)
	}
	return nil
}

func (v *pulseVolume) SubscribeVolumeChanged(cb *mute.Callback) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return fmt.Errorf("pulse volume control closed")
	}
	v.cb = cb
	v.mu.Unlock()

	v.enum.attachSink(v.index, v)
	return nil
}

// deliver forwards one sink change event, tagged with the remembered token
// when it is the echo of our own command and with the zero token otherwise.
func (v *pulseVolume) deliver() {
	v.mu.Lock()
	cb := v.cb
	tag := mute.Token{}
	if v.pendingSelf > 0 {
		v.pendingSelf--
		tag = v.lastTag
	}
	v.mu.Unlock()

	if cb != nil {
		cb.OnVolumeChanged(tag)
	}
}

func (v *pulseVolume) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	cb := v.cb
	v.cb = nil
	v.mu.Unlock()

	v.enum.detachSink(v.index, v)
	if cb != nil {
		cb.Release()
	}
	return nil
}
