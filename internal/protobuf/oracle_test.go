package protobuf

import (
	"errors"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"commtester/internal/errs"
)

func stringFactory() proto.Message {
	return &wrapperspb.StringValue{}
}

func TestTextOracleEncodesValidFragment(t *testing.T) {
	o := NewTextOracle(stringFactory)
	out, err := o.Encode(`value: "hello"`)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got wrapperspb.StringValue
	if err := proto.Unmarshal(out, &got); err != nil {
		t.Fatalf("proto.Unmarshal of oracle output: %v", err)
	}
	if got.Value != "hello" {
		t.Fatalf("Value = %q, want %q", got.Value, "hello")
	}
}

func TestTextOracleRejectsMalformedFragment(t *testing.T) {
	o := NewTextOracle(stringFactory)
	_, err := o.Encode(`value: "unterminated`)
	if err == nil {
		t.Fatal("expected an error for malformed protobuf text")
	}
	if !errors.Is(err, errs.ErrBadPayload) {
		t.Fatalf("expected errs.ErrBadPayload, got %v", err)
	}
}

func TestTextOracleFreshMessagePerCall(t *testing.T) {
	o := NewTextOracle(stringFactory)
	first, err := o.Encode(`value: "first"`)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := o.Encode(`value: "second"`)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(first) == string(second) {
		t.Fatal("expected distinct outputs for distinct inputs")
	}

	var gotFirst wrapperspb.StringValue
	if err := proto.Unmarshal(first, &gotFirst); err != nil {
		t.Fatalf("proto.Unmarshal: %v", err)
	}
	if gotFirst.Value != "first" {
		t.Fatalf("first call leaked state from second: got %q", gotFirst.Value)
	}
}
