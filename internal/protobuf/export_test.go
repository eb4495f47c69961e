package protobuf

import (
	"bytes"
	"errors"
	"testing"

	"commtester/internal/errs"
)

func TestExportPayloadReturnsOnlyPayloadBytes(t *testing.T) {
	line := `version=48 orchId=19096 customerId=1909622898 clientId=1 tranId=365869 type=635 payload=value: "hello"`
	out, err := ExportPayload(line, NewStandInOracle())
	if err != nil {
		t.Fatalf("ExportPayload: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty payload bytes")
	}
	want, err := NewStandInOracle().Encode(`value: "hello"`)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("ExportPayload = %x, want exactly the payload bytes %x (no frame header)", out, want)
	}
}

func TestExportPayloadPropagatesMalformedLine(t *testing.T) {
	_, err := ExportPayload("no markers here", NewStandInOracle())
	if !errors.Is(err, errs.ErrMalformedLine) {
		t.Fatalf("err = %v, want ErrMalformedLine", err)
	}
}
