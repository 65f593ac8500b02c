package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"alwaysmute/doctor"
	"alwaysmute/endpoint"
	"alwaysmute/instance"
	"alwaysmute/log"
	"alwaysmute/mute"
	"alwaysmute/shutdown"
	"alwaysmute/tray"
)

var version = "dev"

// worker owns the pump goroutine and everything the platform requires to
// stay on one OS thread: the enumerator, the binding, and the state machine.
type worker struct {
	pump    *mute.Pump
	machine *mute.Machine
	done    chan struct{}
	initErr chan error
}

// startWorker locks an OS thread, connects the endpoint backend, wires the
// binding and state machine, subscribes to default-device changes, and runs
// the pump loop until Close. All device calls happen on this goroutine.
func startWorker(token mute.Token) *worker {
	w := &worker{
		pump:    mute.NewPump(),
		done:    make(chan struct{}),
		initErr: make(chan error, 1),
	}

	go func() {
		defer close(w.done)
		runtime.LockOSThread()

		enum, err := endpoint.New()
		if err != nil {
			w.initErr <- fmt.Errorf("endpoint backend: %w", err)
			return
		}

		binding := mute.NewBinding(token, w.pump)
		w.machine = mute.NewMachine(enum, binding, log.Diag())

		cb := mute.NewDefaultChangedCallback(w.pump)
		if err := enum.SubscribeDefaultChanged(cb); err != nil {
			cb.Release()
			enum.Close()
			w.initErr <- fmt.Errorf("subscribe default changes: %w", err)
			return
		}

		if err := w.machine.Start(w.pump); err != nil {
			enum.Close()
			w.initErr <- fmt.Errorf("post initial rebind: %w", err)
			return
		}
		w.initErr <- nil

		w.pump.Run(observedHandle(w.machine))

		// Pump closed: tear down on the same thread the handles live on.
		binding.Release()
		enum.Close()
	}()

	return w
}

func (w *worker) stop() {
	w.pump.Close()
	<-w.done
}

// observedHandle wraps the machine handler with the session log's domain
// events: one binding_changed per state transition, one mute_applied per
// successful mute.
func observedHandle(m *mute.Machine) func(mute.Message) {
	return func(msg mute.Message) {
		state, mutes := m.State(), m.Mutes()
		m.Handle(msg)
		if s := m.State(); s != state {
			log.BindingChanged(s.String())
		}
		if m.Mutes() > mutes {
			log.MuteApplied()
		}
	}
}

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("alwaysmute %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	releaseGuard, err := instance.Acquire()
	if err == instance.ErrAlreadyRunning {
		fmt.Fprintln(os.Stderr, "alwaysmute is already running in this session")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer releaseGuard()

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	token := mute.NewToken()
	log.SessionStart(version, endpoint.BackendName, token.String())

	w := startWorker(token)
	if err := <-w.initErr; err != nil {
		log.Errorf("startup failed: %v", err)
		log.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tray.OnLicense(showLicense)
	trayQuit := tray.Init()

	sigCh := make(chan os.Signal, 1)
	shutdown.Notify(sigCh)

	select {
	case <-sigCh:
		log.Info("signal received, shutting down")
		tray.Quit()
	case <-trayQuit:
		log.Info("exit selected from tray")
	}

	w.stop()
	log.SessionEnd(w.machine.Rebinds(), w.machine.Mutes())
	log.Close()
}
