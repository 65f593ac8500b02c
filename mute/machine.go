package mute

import "github.com/rs/zerolog"

// State is the authoritative binding state.
type State uint8

const (
	// Unbound: no device held, mute not applied.
	Unbound State = iota
	// Bound: handles held, mute applied at least once since binding, volume
	// subscription active on the current control.
	Bound
)

func (s State) String() string {
	if s == Bound {
		return "bound"
	}
	return "unbound"
}

// Machine reacts to pump messages by rebinding to the current default
// endpoint and re-asserting mute. It runs for process lifetime; there is no
// terminal state. Handle must only be called from the pump goroutine.
type Machine struct {
	enum    Enumerator
	binding *Binding
	state   State
	log     zerolog.Logger

	rebinds int
	mutes   int
}

func NewMachine(enum Enumerator, binding *Binding, log zerolog.Logger) *Machine {
	return &Machine{enum: enum, binding: binding, log: log}
}

func (m *Machine) State() State {
	return m.state
}

// Rebinds and Mutes report session totals. Like State, they are only
// meaningful from the pump goroutine or after it has stopped.
func (m *Machine) Rebinds() int { return m.rebinds }
func (m *Machine) Mutes() int   { return m.mutes }

// Start enqueues the synthetic initial rebind.
func (m *Machine) Start(post Poster) error {
	return post.Post(MsgRebind)
}

// Handle processes one pump message.
func (m *Machine) Handle(msg Message) {
	switch msg {
	case MsgRebind:
		m.rebind()
	case MsgMute:
		m.mute()
	default:
		m.log.Warn().Uint8("msg", uint8(msg)).Msg("unknown pump message")
	}
}

func (m *Machine) rebind() {
	m.rebinds++
	outcome, err := m.binding.Rebind(m.enum)
	if err != nil {
		// Rebind released the old handles before failing, so nothing is
		// held. Recovery rides on the next device or volume notification.
		m.state = Unbound
		m.log.Error().Err(err).Msg("rebind failed")
		return
	}

	switch outcome {
	case OutcomeNoDevice:
		m.state = Unbound
		m.log.Info().Str("state", m.state.String()).Msg("no default endpoint")
	case OutcomeBound:
		m.state = Bound
		m.log.Info().Str("state", m.state.String()).Msg("bound default endpoint")
		if err := m.binding.Mute(); err != nil {
			m.log.Error().Err(err).Msg("mute after rebind failed")
		} else {
			m.mutes++
		}
	}
}

func (m *Machine) mute() {
	if m.state != Bound {
		// A queued mute can trail a rebind that degraded to Unbound.
		m.log.Warn().Msg("mute requested while unbound, dropping")
		return
	}
	if err := m.binding.Mute(); err != nil {
		// Stay bound; the next externally triggered volume change retries.
		m.log.Error().Err(err).Msg("mute failed")
		return
	}
	m.mutes++
}
