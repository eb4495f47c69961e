package peer

import (
	"context"
	"io"
	"net"

	"commtester/internal/codec"
	"commtester/internal/errs"
)

// ReadFrameV3 reads one complete v3 frame (header + payload) from conn,
// returning the raw bytes (header and payload concatenated, exactly as
// received) alongside the decoded header.
func ReadFrameV3(conn net.Conn) (codec.HeaderV3, []byte, error) {
	headerBytes := make([]byte, codec.HeaderV3Size)
	if _, err := io.ReadFull(conn, headerBytes); err != nil {
		return codec.HeaderV3{}, nil, errs.Wrap(errs.Transport, "read v3 header", err)
	}
	h, err := codec.DecodeHeaderV3(headerBytes)
	if err != nil {
		return codec.HeaderV3{}, nil, err
	}

	payload := make([]byte, h.Len)
	if h.Len > 0 {
		if _, err := io.ReadFull(conn, payload); err != nil {
			return codec.HeaderV3{}, nil, errs.Wrap(errs.Transport, "read v3 payload", err)
		}
	}

	raw := make([]byte, 0, len(headerBytes)+len(payload))
	raw = append(raw, headerBytes...)
	raw = append(raw, payload...)
	return h, raw, nil
}

// WriteRaw writes data to conn in full, respecting ctx cancellation via the
// conn's deadline when ctx carries one (plain net.Conn has no native
// context support).
func WriteRaw(ctx context.Context, conn net.Conn, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(data); err != nil {
		return errs.Wrap(errs.Transport, "write frame", err)
	}
	return nil
}
