// Package logline extracts the header fields and payload region from a
// single CommServer log line, and rewrites identity fields in place.
package logline

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"commtester/internal/errs"
)

// LineRecord is the ordered 7-tuple extracted from one log line.
type LineRecord struct {
	Version    int
	OrchId     int
	CustomerId int
	ClientId   int
	TranId     int
	MType      int
	Payload    string
}

// markers lists the literal keywords ParseLine searches for, in the order
// they populate LineRecord's integer fields. Payload is handled separately
// since it runs to end of line rather than to the next space.
var markers = []struct {
	key   string
	field func(*LineRecord) *int
}{
	{"version=", func(r *LineRecord) *int { return &r.Version }},
	{"orchId=", func(r *LineRecord) *int { return &r.OrchId }},
	{"customerId=", func(r *LineRecord) *int { return &r.CustomerId }},
	{"clientId=", func(r *LineRecord) *int { return &r.ClientId }},
	{"tranId=", func(r *LineRecord) *int { return &r.TranId }},
	{"type=", func(r *LineRecord) *int { return &r.MType }},
}

const payloadMarker = "payload="

// ParseLine extracts a LineRecord from line. Every marker in markers plus
// "payload=" must be present; an integer field is the decimal run from the
// marker to the next space (or end of line).
func ParseLine(line string) (LineRecord, error) {
	var rec LineRecord
	for _, m := range markers {
		idx := strings.Index(line, m.key)
		if idx < 0 {
			return LineRecord{}, errs.New(errs.MalformedLine, "missing marker "+m.key)
		}
		start := idx + len(m.key)
		end := strings.IndexByte(line[start:], ' ')
		var token string
		if end < 0 {
			token = line[start:]
		} else {
			token = line[start : start+end]
		}
		v, err := strconv.Atoi(token)
		if err != nil {
			return LineRecord{}, errs.Wrap(errs.MalformedLine, "non-integer value for "+m.key, err)
		}
		*m.field(&rec) = v
	}

	idx := strings.Index(line, payloadMarker)
	if idx < 0 {
		return LineRecord{}, errs.New(errs.MalformedLine, "missing marker "+payloadMarker)
	}
	rec.Payload = line[idx+len(payloadMarker):]
	return rec, nil
}

// rewriteIDsPattern matches orchId=, customerId=, or clientId= followed by
// a decimal run, anchored on word boundaries so it never touches
// tranId/type/version or a substring of a longer identifier.
var rewriteIDsPattern = regexp2.MustCompile(`\b(orchId|customerId|clientId)=\d+`, regexp2.None)

// RewriteIDs substitutes orchId, customerId, and clientId occurrences in
// line with the given values, leaving every other field untouched.
func RewriteIDs(line string, orchId, customerId, clientId int) (string, error) {
	values := map[string]int{
		"orchId":     orchId,
		"customerId": customerId,
		"clientId":   clientId,
	}
	out, err := rewriteIDsPattern.ReplaceFunc(line, func(m regexp2.Match) string {
		field := m.GroupByNumber(1).String()
		return field + "=" + strconv.Itoa(values[field])
	}, -1, -1)
	if err != nil {
		return "", errs.Wrap(errs.MalformedLine, "rewrite_ids regex", err)
	}
	return out, nil
}
