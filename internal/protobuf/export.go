package protobuf

import (
	"commtester/internal/logline"
)

// ExportPayload runs a single log line through the log line parser and this
// oracle, returning just the protobuf payload's wire bytes — never the
// frame header.
func ExportPayload(line string, oracle Oracle) ([]byte, error) {
	rec, err := logline.ParseLine(line)
	if err != nil {
		return nil, err
	}
	return oracle.Encode(rec.Payload)
}
