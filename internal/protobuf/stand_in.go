package protobuf

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewStandInOracle builds the Oracle the replay runner and payload-export
// CLI use when no schema-specific factory is supplied at the call site.
// The real "PayloadType" protobuf schema is an external collaborator (out
// of scope here); wrapperspb.StringValue stands in for it so the text
// bridge still exercises prototext.Unmarshal/proto.Marshal against a real
// generated message rather than a hand-rolled stub.
func NewStandInOracle() *TextOracle {
	return NewTextOracle(func() proto.Message { return new(wrapperspb.StringValue) })
}
