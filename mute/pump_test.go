package mute

import (
	"errors"
	"testing"
)

func TestPumpDeliversInOrder(t *testing.T) {
	p := NewPump()
	for _, m := range []Message{MsgRebind, MsgMute, MsgMute} {
		if err := p.Post(m); err != nil {
			t.Fatalf("post %v: %v", m, err)
		}
	}

	var got []Message
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(func(m Message) {
			got = append(got, m)
			if len(got) == 3 {
				p.Close()
			}
		})
	}()
	<-done

	want := []Message{MsgRebind, MsgMute, MsgMute}
	if len(got) != len(want) {
		t.Fatalf("delivered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivered %v, want %v", got, want)
		}
	}
}

func TestPumpPostAfterClose(t *testing.T) {
	p := NewPump()
	p.Close()
	if err := p.Post(MsgRebind); !errors.Is(err, ErrPumpClosed) {
		t.Fatalf("got %v, want ErrPumpClosed", err)
	}
}

func TestPumpPostFullQueue(t *testing.T) {
	p := NewPump()
	for i := 0; i < pumpDepth; i++ {
		if err := p.Post(MsgMute); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}
	if err := p.Post(MsgMute); !errors.Is(err, ErrPumpFull) {
		t.Fatalf("got %v, want ErrPumpFull", err)
	}
}

func TestPumpCloseIdempotent(t *testing.T) {
	p := NewPump()
	p.Close()
	p.Close()
}
