package peer

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"commtester/internal/codec"
)

func TestOrchestratorEchoesFrameByteForByte(t *testing.T) {
	serverConn, orchConn := net.Pipe()
	defer serverConn.Close()
	defer orchConn.Close()

	orch := NewOrchestrator(orchConn, OrchConfig{
		OrchId:     3,
		MsgType:    Range{Start: 0, End: 600},
		CustomerId: Range{Start: 1, End: 2},
		ClientId:   Range{Start: 1, End: 9},
	})

	ctx, cancel := context.WithCancel(context.Background())
	runErrCh := make(chan error, 1)
	go func() { runErrCh <- orch.Run(ctx) }()

	// Harness: read and discard the Subscribe frame, then push a test
	// frame and read back the echo.
	if _, _, err := ReadFrameV3(serverConn); err != nil {
		t.Fatalf("harness read subscribe frame: %v", err)
	}

	h := codec.HeaderV3{CustomerId: 42, ClientId: 7, OrchId: 3, Type: 601, TransactionId: 99}
	sent, err := codec.EncodeV3(h, []byte("echo me"), nil)
	if err != nil {
		t.Fatalf("EncodeV3: %v", err)
	}
	if _, err := serverConn.Write(sent); err != nil {
		t.Fatalf("harness write test frame: %v", err)
	}

	_, echoed, err := ReadFrameV3(serverConn)
	if err != nil {
		t.Fatalf("harness read echo: %v", err)
	}
	if !bytes.Equal(echoed, sent) {
		t.Fatalf("echoed bytes = %x, want %x", echoed, sent)
	}

	cancel()
	select {
	case <-runErrCh:
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator.Run never returned after cancel")
	}
}

func TestOrchestratorEchoesWithQueueDepthOne(t *testing.T) {
	serverConn, orchConn := net.Pipe()
	defer serverConn.Close()
	defer orchConn.Close()

	orch := NewOrchestrator(orchConn, OrchConfig{
		OrchId:     1,
		MsgType:    Range{Start: 0, End: 1},
		CustomerId: Range{Start: 0, End: 1},
		ClientId:   Range{Start: 0, End: 1},
		QueueDepth: 1,
	})

	var received [][]byte
	orch.OnFrame(func(raw []byte) {
		received = append(received, append([]byte(nil), raw...))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErrCh := make(chan error, 1)
	go func() { runErrCh <- orch.Run(ctx) }()

	if _, _, err := ReadFrameV3(serverConn); err != nil {
		t.Fatalf("harness read subscribe: %v", err)
	}

	h := codec.HeaderV3{CustomerId: 1, ClientId: 1, TransactionId: 1}
	frame, err := codec.EncodeV3(h, []byte("x"), nil)
	if err != nil {
		t.Fatalf("EncodeV3: %v", err)
	}
	// Orchestrator.Run's underlying pipe is synchronous: writing the
	// harness side and reading the echo side are enough to prove the
	// pipeline is alive without needing to force an actual overflow, since
	// net.Pipe provides no real buffering to race against.
	if _, err := serverConn.Write(frame); err != nil {
		t.Fatalf("harness write: %v", err)
	}
	if _, _, err := ReadFrameV3(serverConn); err != nil {
		t.Fatalf("harness read echo: %v", err)
	}
}
