// Package replay implements the log-to-wire replay engine: partitioning a
// parsed log corpus across a fixed worker count and driving each worker's
// group/repetition/gap timing loop against the queue publisher.
package replay

import (
	"commtester/internal/logline"
)

// ParsedLine pairs a parsed record with the raw line it came from —
// classify.Classify and the "reply message" substring check both need the
// raw text, not just the structured fields.
type ParsedLine struct {
	Record logline.LineRecord
	Raw    string
}

// LineCorpus is the ordered, successfully-parsed subset of an input log
// file. Lines that fail to parse are dropped and reported separately so one
// bad line never aborts the whole load.
type LineCorpus struct {
	Lines   []ParsedLine
	Skipped []error
}

// Identity overrides orchId/customerId/clientId on every line of a corpus
// at load time, before partitioning — the same three fields
// logline.RewriteIDs targets.
type Identity struct {
	OrchId     int
	CustomerId int
	ClientId   int
}

// BuildCorpus parses every raw line with logline.ParseLine, optionally
// rewriting identity fields first. A line that fails to parse is skipped
// and its error recorded in Skipped rather than aborting the whole load.
func BuildCorpus(rawLines []string, identity *Identity) *LineCorpus {
	corpus := &LineCorpus{}
	for _, raw := range rawLines {
		line := raw
		if identity != nil {
			rewritten, err := logline.RewriteIDs(raw, identity.OrchId, identity.CustomerId, identity.ClientId)
			if err != nil {
				corpus.Skipped = append(corpus.Skipped, err)
				continue
			}
			line = rewritten
		}
		rec, err := logline.ParseLine(line)
		if err != nil {
			corpus.Skipped = append(corpus.Skipped, err)
			continue
		}
		corpus.Lines = append(corpus.Lines, ParsedLine{Record: rec, Raw: line})
	}
	return corpus
}

// Shard is one worker's contiguous slice of a corpus plus its 1-based
// absolute starting line number, used only for reporting.
type Shard struct {
	Lines     []ParsedLine
	StartLine int
}

// Partition splits corpus into workers contiguous shards. Sizes differ by
// at most one; the first `len(corpus.Lines) % workers` shards receive the
// extra line. A workers count greater than len(corpus.Lines) yields some
// empty shards that do no work.
func Partition(corpus *LineCorpus, workers int) []Shard {
	n := len(corpus.Lines)
	base := n / workers
	extra := n % workers

	shards := make([]Shard, workers)
	pos := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		shards[i] = Shard{
			Lines:     corpus.Lines[pos : pos+size],
			StartLine: pos + 1,
		}
		pos += size
	}
	return shards
}
