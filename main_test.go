package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alwaysmute/log"
	"alwaysmute/mute"
)

func TestObservedHandleEmitsDomainEvents(t *testing.T) {
	tmp := t.TempDir()
	log.SetDir(tmp)
	if err := log.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close(); log.SetDir("") })

	pump := mute.NewPump()
	enum := mute.NewFakeEnumerator()
	enum.SetDefault(mute.NewFakeDevice("headphones"))
	binding := mute.NewBinding(mute.NewToken(), pump)
	machine := mute.NewMachine(enum, binding, log.Diag())

	handle := observedHandle(machine)
	handle(mute.MsgRebind)
	binding.Release()
	log.Close()

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "binding_changed") {
		t.Errorf("missing binding_changed event, got: %q", text)
	}
	if !strings.Contains(text, "mute_applied") {
		t.Errorf("missing mute_applied event, got: %q", text)
	}
}

func TestObservedHandleQuietWithoutTransition(t *testing.T) {
	tmp := t.TempDir()
	log.SetDir(tmp)
	if err := log.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close(); log.SetDir("") })

	pump := mute.NewPump()
	enum := mute.NewFakeEnumerator()
	binding := mute.NewBinding(mute.NewToken(), pump)
	machine := mute.NewMachine(enum, binding, log.Diag())

	// No default device: rebind lands Unbound, which is no transition from
	// the initial state, and nothing is muted.
	handle := observedHandle(machine)
	handle(mute.MsgRebind)
	log.Close()

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if strings.Contains(text, "binding_changed") {
		t.Errorf("unexpected binding_changed event, got: %q", text)
	}
	if strings.Contains(text, "mute_applied") {
		t.Errorf("unexpected mute_applied event, got: %q", text)
	}
}
