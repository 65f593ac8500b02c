package doctor

import (
	"fmt"
	"time"

	"alwaysmute/endpoint"
	"alwaysmute/instance"
	"alwaysmute/mute"

	"github.com/rs/zerolog"
)

// Run executes diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("alwaysmute doctor - system diagnostics")
	fmt.Println("======================================")

	allPass := true

	if !checkInstanceGuard() {
		allPass = false
	}
	if !checkEndpoint() {
		allPass = false
	}
	if !checkStateMachine() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkInstanceGuard() bool {
	fmt.Println()
	fmt.Println("[1/3] Single-instance guard")

	release, err := instance.Acquire()
	if err == instance.ErrAlreadyRunning {
		fmt.Println("  FAIL: another alwaysmute process is running in this session")
		return false
	}
	if err != nil {
		fmt.Printf("  FAIL: cannot acquire instance guard: %v\n", err)
		return false
	}
	release()
	fmt.Println("  PASS: guard acquired and released")
	return true
}

func checkEndpoint() bool {
	fmt.Println()
	fmt.Println("[2/3] Audio endpoint backend")

	enum, err := endpoint.New()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio backend: %v\n", err)
		return false
	}
	defer enum.Close()

	dev, err := enum.DefaultRenderEndpoint()
	if err == mute.ErrNoDevice {
		fmt.Println("  WARN: no default render device (unbound operation is still valid)")
		return true
	}
	if err != nil {
		fmt.Printf("  FAIL: cannot resolve default render device: %v\n", err)
		return false
	}
	defer dev.Close()

	vol, err := dev.ActivateVolumeControl()
	if err != nil {
		fmt.Printf("  FAIL: cannot activate volume control: %v\n", err)
		return false
	}
	vol.Close()

	fmt.Println("  PASS: default render device bound and volume control activated")
	return true
}

// checkStateMachine runs the rebinding loop against fakes: bind to a device,
// switch the default, and confirm the new device was muted with our tag.
func checkStateMachine() bool {
	fmt.Println()
	fmt.Println("[3/3] State machine dry run")

	token := mute.NewToken()
	pump := mute.NewPump()
	enum := mute.NewFakeEnumerator()
	d1 := mute.NewFakeDevice("dry-run-1")
	d2 := mute.NewFakeDevice("dry-run-2")
	enum.SetDefault(d1)

	binding := mute.NewBinding(token, pump)
	machine := mute.NewMachine(enum, binding, zerolog.Nop())

	cb := mute.NewDefaultChangedCallback(pump)
	if err := enum.SubscribeDefaultChanged(cb); err != nil {
		fmt.Printf("  FAIL: cannot subscribe default-changed: %v\n", err)
		return false
	}

	done := make(chan struct{})
	go func() {
		pump.Run(machine.Handle)
		close(done)
	}()

	if err := machine.Start(pump); err != nil {
		fmt.Printf("  FAIL: cannot post initial rebind: %v\n", err)
		return false
	}
	time.Sleep(50 * time.Millisecond)

	enum.SetDefault(d2)
	if err := enum.FireDefaultChanged(mute.FlowRender, mute.RoleConsole); err != nil {
		fmt.Printf("  FAIL: default-changed notification rejected: %v\n", err)
		return false
	}
	time.Sleep(50 * time.Millisecond)

	pump.Close()
	<-done
	binding.Release()
	enum.Close()

	vol := d2.Volume()
	if vol == nil {
		fmt.Println("  FAIL: new default device was never activated")
		return false
	}
	levels, tags := vol.SetCalls()
	if len(levels) == 0 {
		fmt.Println("  FAIL: new default device was never muted")
		return false
	}
	if levels[0] != 0 || tags[0] != token {
		fmt.Printf("  FAIL: unexpected mute call (level=%v)\n", levels[0])
		return false
	}
	if !d1.Balanced() || !d2.Balanced() {
		fmt.Println("  FAIL: device handles not balanced after release")
		return false
	}

	fmt.Println("  PASS: rebind, mute and release all balanced")
	return true
}
