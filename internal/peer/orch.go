package peer

import (
	"context"
	"net"
	"time"

	"commtester/internal/errs"
)

// OrchConfig parameterizes an Orchestrator Peer run.
type OrchConfig struct {
	OrchId     int
	MsgType    Range
	CustomerId Range
	ClientId   Range
	FrameType  int // header Type on the Subscribe frame itself
	QueueDepth int // bounded echo queue capacity; default used if <= 0
	Show       bool
}

const defaultEchoQueueDepth = 64

// Orchestrator subscribes on connect, then runs a decoupled recv/send pair:
// recv drains inbound frames into a bounded channel without ever blocking
// (drop-newest on full), send drains that channel and echoes the bytes back
// verbatim.
type Orchestrator struct {
	conn    net.Conn
	cfg     OrchConfig
	machine *Machine
	onFrame func(raw []byte) // optional --show hook
}

func NewOrchestrator(conn net.Conn, cfg OrchConfig) *Orchestrator {
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultEchoQueueDepth
	}
	return &Orchestrator{conn: conn, cfg: cfg, machine: NewMachine()}
}

func (o *Orchestrator) Machine() *Machine { return o.machine }

// OnFrame registers a callback invoked with each echoed frame's raw bytes,
// used by the CLI's --show option.
func (o *Orchestrator) OnFrame(f func(raw []byte)) { o.onFrame = f }

// Run sends the Subscribe frame, then runs recv and send until ctx is
// cancelled or either task hits a fatal error — per the peer propagation
// policy, an error in either terminates the whole session.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.machine.HandshakeDone(true)

	subFrame, err := BuildSubscribeFrame(o.cfg.OrchId, o.cfg.MsgType, o.cfg.CustomerId, o.cfg.ClientId, o.cfg.FrameType)
	if err != nil {
		o.machine.Close(err)
		return err
	}
	if err := WriteRaw(ctx, o.conn, subFrame); err != nil {
		o.machine.Close(err)
		return err
	}
	o.machine.SubscribeSent()

	// Shutdown is signalled by closing inbound rather than by sending a nil
	// payload: a buffered channel of []byte cannot carry both values and a
	// sentinel cleanly, and closing is the idiomatic Go equivalent of the
	// asyncio None sentinel. send sees the closed channel and returns.
	inbound := make(chan []byte, o.cfg.QueueDepth)

	recvErrCh := make(chan error, 1)
	sendErrCh := make(chan error, 1)

	recvCtx, cancelRecv := context.WithCancel(ctx)
	defer cancelRecv()

	go func() {
		recvErrCh <- o.recvLoop(recvCtx, inbound)
	}()
	go func() {
		sendErrCh <- o.sendLoop(ctx, inbound)
	}()

	var finalErr error
	select {
	case finalErr = <-recvErrCh:
		cancelRecv()
		<-sendErrCh
	case finalErr = <-sendErrCh:
		cancelRecv()
		<-recvErrCh
	case <-ctx.Done():
		finalErr = nil
		cancelRecv()
		<-recvErrCh
		<-sendErrCh
	}

	o.machine.Close(finalErr)
	return finalErr
}

// recvLoop reads framed v3 messages and pushes them onto inbound without
// ever blocking: a full queue means the message is dropped and logged, not
// that recv stalls (a stalled recv would back-pressure the server and
// invalidate the test). It closes inbound on exit so sendLoop terminates.
func (o *Orchestrator) recvLoop(ctx context.Context, inbound chan<- []byte) error {
	defer close(inbound)

	// A blocked Read does not observe ctx directly; a watcher forces any
	// pending or future Read to return immediately on cancellation by
	// setting an expired read deadline.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = o.conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, raw, err := ReadFrameV3(o.conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case inbound <- raw:
		default:
			// queue full: drop newest, per the overflow policy.
		}
	}
}

// sendLoop drains inbound and writes each frame back verbatim, producing
// exact byte-echo behavior. It returns when inbound is closed (the
// shutdown sentinel).
func (o *Orchestrator) sendLoop(ctx context.Context, inbound <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-inbound:
			if !ok {
				return nil
			}
			if o.onFrame != nil {
				o.onFrame(raw)
			}
			if err := WriteRaw(ctx, o.conn, raw); err != nil {
				return errs.Wrap(errs.Transport, "echo write", err)
			}
		}
	}
}
