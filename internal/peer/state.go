// Package peer implements the TLS protocol peer: the state machine shared
// by the client and orchestrator roles, and each role's send/recv loop.
package peer

// State is a point in the shared client/orchestrator connection lifecycle.
type State int

const (
	Connecting State = iota
	Handshaking
	Subscribing // orchestrator only
	Ready       // client only
	Running
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Handshaking:
		return "HANDSHAKING"
	case Subscribing:
		return "SUBSCRIBING"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Machine tracks one connection's current state and the terminal cause, if
// any, that drove it into Closing.
type Machine struct {
	state State
	cause error
}

func NewMachine() *Machine {
	return &Machine{state: Connecting}
}

func (m *Machine) State() State { return m.state }

// Cause is the error that drove this connection to Closing, if any — a
// clean shutdown (count reached, EOF) leaves it nil.
func (m *Machine) Cause() error { return m.cause }

// HandshakeDone transitions Connecting/Handshaking to Ready (client) or
// Subscribing (orchestrator).
func (m *Machine) HandshakeDone(isOrchestrator bool) {
	if isOrchestrator {
		m.state = Subscribing
	} else {
		m.state = Ready
	}
}

// SubscribeSent transitions an orchestrator from Subscribing to Running on
// the first successful frame write.
func (m *Machine) SubscribeSent() {
	if m.state == Subscribing {
		m.state = Running
	}
}

// Run transitions Ready to Running for a client beginning its send loop.
func (m *Machine) Run() {
	if m.state == Ready {
		m.state = Running
	}
}

// Close transitions to Closing, recording cause (nil for a clean shutdown:
// count reached, EOF, or cancellation).
func (m *Machine) Close(cause error) {
	m.state = Closing
	m.cause = cause
}

// Closed marks the connection fully released.
func (m *Machine) Closed() {
	m.state = Closed
}
