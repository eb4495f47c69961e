package peer

import (
	"context"
	"net"
	"sync"
	"time"

	"commtester/internal/codec"
	"commtester/internal/errs"
)

// PayloadOverride pins the Crazy Client's payload to fixed bytes instead of
// the synthetic sequence, in priority order file > hex > text (the caller
// resolves hex/text to bytes before building ClientConfig; this type just
// records which source won, for logging).
type PayloadOverride struct {
	Bytes  []byte
	Source string // "file", "hex", "text", or "" for synthetic
}

// ClientConfig parameterizes one Crazy Client run.
type ClientConfig struct {
	CustomerId      int
	ClientId        int
	Type            int
	Size            int
	Count           int // -1 = infinite
	StartTransaction int
	Gap             time.Duration
	Dialect         codec.Dialect
	Override        *PayloadOverride
}

// Client drives the crazy-send loop plus a parallel drain-only recv loop on
// one connection.
type Client struct {
	conn    net.Conn
	cfg     ClientConfig
	machine *Machine
}

func NewClient(conn net.Conn, cfg ClientConfig) *Client {
	return &Client{conn: conn, cfg: cfg, machine: NewMachine()}
}

func (c *Client) Machine() *Machine { return c.machine }

// Run drives send to completion (cfg.Count messages, or forever if Count <
// 0) while recv concurrently drains inbound frames so the connection never
// stalls on backpressure. recv has no termination condition of its own and
// is cancelled once send completes.
func (c *Client) Run(ctx context.Context) error {
	c.machine.HandshakeDone(false)
	c.machine.Run()

	recvCtx, cancelRecv := context.WithCancel(ctx)
	defer cancelRecv()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.recvLoop(recvCtx)
	}()

	err := c.sendLoop(ctx)
	cancelRecv()
	wg.Wait()

	c.machine.Close(err)
	return err
}

func (c *Client) sendLoop(ctx context.Context) error {
	transaction := c.cfg.StartTransaction
	sent := 0
	for c.cfg.Count < 0 || sent < c.cfg.Count {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload := c.payloadFor(transaction)
		frame, err := c.encodeMessage(transaction, payload)
		if err != nil {
			return err
		}
		if err := WriteRaw(ctx, c.conn, frame); err != nil {
			return err
		}

		transaction++
		sent++

		if c.cfg.Gap > 0 {
			sleepCtx(ctx, c.cfg.Gap)
		}
	}
	return nil
}

// recvLoop drains inbound frames so the connection never stalls on
// backpressure. A blocked Read does not observe ctx directly (net.Conn has
// no context support), so a watcher goroutine forces any pending or future
// Read to return immediately by setting an expired read deadline once ctx
// is cancelled.
func (c *Client) recvLoop(ctx context.Context) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	for {
		if c.cfg.Dialect == codec.DialectV2 {
			if err := drainV2(c.conn); err != nil {
				return
			}
			continue
		}
		if _, _, err := ReadFrameV3(c.conn); err != nil {
			return
		}
	}
}

// payloadFor returns the override bytes if configured, else the synthetic
// sequence where byte n = (startTransaction + n*step) mod 256 and step is
// this message's transaction id, masked to a byte.
func (c *Client) payloadFor(transaction int) []byte {
	if c.cfg.Override != nil {
		return c.cfg.Override.Bytes
	}
	step := transaction & 0xff
	out := make([]byte, c.cfg.Size)
	for n := range out {
		out[n] = byte((c.cfg.StartTransaction + n*step) & 0xff)
	}
	return out
}

func (c *Client) encodeMessage(transaction int, payload []byte) ([]byte, error) {
	if c.cfg.Dialect == codec.DialectV2 {
		h := codec.HeaderV2{
			CustomerId:    uint32(c.cfg.CustomerId),
			ClientId:      uint16(c.cfg.ClientId),
			Type:          uint16(c.cfg.Type),
			TransactionId: uint32(transaction),
		}
		return codec.EncodeV2(h, payload)
	}
	h := codec.HeaderV3{
		CustomerId:    uint32(c.cfg.CustomerId),
		ClientId:      uint32(c.cfg.ClientId),
		Type:          uint16(c.cfg.Type),
		TransactionId: uint32(transaction),
	}
	return codec.EncodeV3(h, payload, nil)
}

func drainV2(conn net.Conn) error {
	headerBytes := make([]byte, codec.HeaderV2CipherSize)
	if _, err := readFull(conn, headerBytes); err != nil {
		return errs.Wrap(errs.Transport, "read v2 header", err)
	}
	h, err := codec.DecodeHeaderV2(headerBytes)
	if err != nil {
		return err
	}
	if h.Len > 0 {
		payload := make([]byte, h.Len)
		if _, err := readFull(conn, payload); err != nil {
			return errs.Wrap(errs.Transport, "read v2 payload", err)
		}
	}
	return nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
