// Package protobuf bridges human-readable protobuf text fragments (as they
// appear embedded in CommServer log lines) to the binary wire payload a
// frame carries. The concrete message schema is out of scope here — callers
// inject it as a factory, keeping this package schema-agnostic.
package protobuf

import (
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"commtester/internal/errs"
)

// Oracle turns a protobuf text fragment into serialized binary bytes.
type Oracle interface {
	Encode(text string) ([]byte, error)
}

// TextOracle implements Oracle against a caller-supplied message factory.
// New is called once per Encode so concurrent callers never share mutable
// message state.
type TextOracle struct {
	New func() proto.Message
}

// NewTextOracle builds a TextOracle for the given message factory.
func NewTextOracle(factory func() proto.Message) *TextOracle {
	return &TextOracle{New: factory}
}

// Encode parses text as the oracle's protobuf message type and marshals it
// to binary wire bytes. A text fragment that doesn't parse against the
// injected schema is reported as errs.BadPayload, not a bare protobuf error,
// so callers can uniformly skip-and-continue per the replay policy.
func (o *TextOracle) Encode(text string) ([]byte, error) {
	msg := o.New()
	if err := prototext.Unmarshal([]byte(text), msg); err != nil {
		return nil, errs.Wrap(errs.BadPayload, "prototext unmarshal", err)
	}
	out, err := proto.Marshal(msg)
	if err != nil {
		return nil, errs.Wrap(errs.BadPayload, "proto marshal", err)
	}
	return out, nil
}
