package mute

import (
	"errors"
	"sync"
)

// Message is a fixed-size pump message. Notification callbacks post these
// from platform threads; the pump delivers them one at a time on its own
// goroutine.
type Message uint8

const (
	// MsgRebind asks the state machine to rebind to the current default
	// render endpoint.
	MsgRebind Message = iota + 1
	// MsgMute asks the state machine to re-assert mute on the endpoint it is
	// already bound to.
	MsgMute
)

func (m Message) String() string {
	switch m {
	case MsgRebind:
		return "rebind"
	case MsgMute:
		return "mute"
	default:
		return "unknown"
	}
}

// Poster accepts messages for later delivery on the pump goroutine. Post is
// the only operation a notification callback may perform.
type Poster interface {
	Post(Message) error
}

var (
	ErrPumpClosed = errors.New("mute: pump closed")
	ErrPumpFull   = errors.New("mute: pump queue full")
)

const pumpDepth = 64

// Pump is a single-goroutine message loop. Post never blocks; Run delivers
// messages on the calling goroutine until Close. All state machine and
// binding mutation happens inside Run's handler, so none of it needs locks.
type Pump struct {
	msgs      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewPump() *Pump {
	return &Pump{
		msgs: make(chan Message, pumpDepth),
		done: make(chan struct{}),
	}
}

// Post enqueues a message without blocking. A full queue is reported as
// ErrPumpFull rather than waited out; the platform treats it as a rejected
// notification and the next event retries.
func (p *Pump) Post(m Message) error {
	select {
	case <-p.done:
		return ErrPumpClosed
	default:
	}
	select {
	case p.msgs <- m:
		return nil
	case <-p.done:
		return ErrPumpClosed
	default:
		return ErrPumpFull
	}
}

// Run delivers queued messages to handle on the calling goroutine until the
// pump is closed.
func (p *Pump) Run(handle func(Message)) {
	for {
		select {
		case m := <-p.msgs:
			handle(m)
		case <-p.done:
			return
		}
	}
}

func (p *Pump) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}
