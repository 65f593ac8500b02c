package mute

import (
	"errors"
	"testing"
)

type recordingPoster struct {
	msgs []Message
	err  error
}

func (p *recordingPoster) Post(m Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, m)
	return nil
}

type panicPoster struct{}

func (panicPoster) Post(Message) error { panic("poster exploded") }

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestCallbackDestroyedExactlyOnce(t *testing.T) {
	cb := NewDefaultChangedCallback(&recordingPoster{})
	destroys := 0
	cb.onDestroy = func() { destroys++ }

	// Platform retains twice on top of the implicit reference.
	if n := cb.Retain(); n != 2 {
		t.Fatalf("retain: got %d, want 2", n)
	}
	if n := cb.Retain(); n != 3 {
		t.Fatalf("retain: got %d, want 3", n)
	}

	cb.Release()
	cb.Release()
	if destroys != 0 {
		t.Fatalf("destroyed while refcount still positive")
	}
	if n := cb.Release(); n != 0 {
		t.Fatalf("final release: got %d, want 0", n)
	}
	if destroys != 1 {
		t.Fatalf("destroys = %d, want exactly 1", destroys)
	}
}

func TestReleaseWithoutRetainPanics(t *testing.T) {
	cb := NewVolumeChangedCallback(&recordingPoster{}, NewToken())
	cb.Release() // drops the implicit reference, destroying the callback
	expectPanic(t, "double release", func() { cb.Release() })
}

func TestRetainAfterDestroyPanics(t *testing.T) {
	cb := NewDefaultChangedCallback(&recordingPoster{})
	cb.Release()
	expectPanic(t, "retain after destroy", func() { cb.Retain() })
}

func TestQueryRetainsForSupportedCapabilities(t *testing.T) {
	cb := NewVolumeChangedCallback(&recordingPoster{}, NewToken())

	for _, capability := range []Capability{CapBase, CapVolumeChanged} {
		got, err := cb.Query(capability)
		if err != nil {
			t.Fatalf("query %v: %v", capability, err)
		}
		if got != cb {
			t.Fatalf("query %v: returned a different object", capability)
		}
	}
	// One implicit + two query retains.
	if n := cb.refs.Load(); n != 3 {
		t.Fatalf("refs = %d, want 3", n)
	}
}

func TestQueryUnknownCapability(t *testing.T) {
	cb := NewVolumeChangedCallback(&recordingPoster{}, NewToken())
	if _, err := cb.Query(CapDefaultChanged); !errors.Is(err, ErrNoCapability) {
		t.Fatalf("got %v, want ErrNoCapability", err)
	}
	if n := cb.refs.Load(); n != 1 {
		t.Fatalf("failed query changed refcount to %d", n)
	}
}

func TestVolumeChangeEchoSuppressed(t *testing.T) {
	token := NewToken()
	post := &recordingPoster{}
	cb := NewVolumeChangedCallback(post, token)

	if err := cb.OnVolumeChanged(token); err != nil {
		t.Fatalf("self-tagged change: %v", err)
	}
	if len(post.msgs) != 0 {
		t.Fatalf("self-tagged change posted %v", post.msgs)
	}

	if err := cb.OnVolumeChanged(NewToken()); err != nil {
		t.Fatalf("external change: %v", err)
	}
	if len(post.msgs) != 1 || post.msgs[0] != MsgMute {
		t.Fatalf("external change posted %v, want [mute]", post.msgs)
	}
}

func TestDefaultChangeFiltersFlowAndRole(t *testing.T) {
	post := &recordingPoster{}
	cb := NewDefaultChangedCallback(post)

	if err := cb.OnDefaultChanged(FlowCapture, RoleConsole); err != nil {
		t.Fatalf("capture change: %v", err)
	}
	if err := cb.OnDefaultChanged(FlowRender, RoleMultimedia); err != nil {
		t.Fatalf("multimedia change: %v", err)
	}
	if len(post.msgs) != 0 {
		t.Fatalf("irrelevant changes posted %v", post.msgs)
	}

	if err := cb.OnDefaultChanged(FlowRender, RoleConsole); err != nil {
		t.Fatalf("render/console change: %v", err)
	}
	if len(post.msgs) != 1 || post.msgs[0] != MsgRebind {
		t.Fatalf("posted %v, want [rebind]", post.msgs)
	}
}

func TestNotifyWrongCapabilityRejected(t *testing.T) {
	cb := NewDefaultChangedCallback(&recordingPoster{})
	if err := cb.OnVolumeChanged(NewToken()); !errors.Is(err, ErrNoCapability) {
		t.Fatalf("got %v, want ErrNoCapability", err)
	}
}

func TestNotifyPostErrorSurfaced(t *testing.T) {
	wantErr := errors.New("queue full")
	cb := NewDefaultChangedCallback(&recordingPoster{err: wantErr})
	if err := cb.OnDefaultChanged(FlowRender, RoleConsole); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestNotifyBoundaryCatchesPanics(t *testing.T) {
	cb := NewDefaultChangedCallback(panicPoster{})
	err := cb.OnDefaultChanged(FlowRender, RoleConsole)
	if err == nil {
		t.Fatal("expected an error from a panicking delivery")
	}
}
