package replay

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dlclark/regexp2"

	"commtester/internal/classify"
	"commtester/internal/codec"
	"commtester/internal/logline"
	"commtester/internal/protobuf"
	"commtester/internal/queue"
)

// timestampPattern matches "timestamp: <digits>" inside a payload text
// fragment so the current send time can be substituted in before
// re-encoding.
var timestampPattern = regexp2.MustCompile(`timestamp: \d+`, regexp2.None)

// Counters tracks per-queue delivery counts for one worker.
type Counters struct {
	Config int
	Stats  int
	Reply  int
}

func (c *Counters) record(queueName classify.QueueName) {
	switch queueName {
	case classify.ServerToOrchSta:
		c.Stats++
	case classify.ServerToOrchReply:
		c.Reply++
	default:
		c.Config++
	}
}

// Sampler takes one host resource sample, purely for observation.
type Sampler interface {
	Sample(ctx context.Context) error
}

// Logger is the subset of structured logging the planner drives.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Config parameterizes one replay run.
type Config struct {
	Workers  int
	Repeats  int
	Gap      time.Duration
	Groups   int
	GroupGap time.Duration
	Profile  classify.Profile
	Dialect  codec.Dialect

	// NowMicros returns the current time in microseconds since the Unix
	// epoch; overridable for deterministic tests.
	NowMicros func() int64
}

// Planner drives one replay run's workers against a publisher.
type Planner struct {
	cfg     Config
	oracle  protobuf.Oracle
	pub     queue.Publisher
	log     Logger
	sampler Sampler
}

// New builds a Planner. log and sampler may be nil (sampler is optional
// per spec; a nil Logger falls back to a no-op).
func New(cfg Config, oracle protobuf.Oracle, pub queue.Publisher, log Logger, sampler Sampler) *Planner {
	if cfg.NowMicros == nil {
		cfg.NowMicros = func() int64 { return time.Now().UnixMicro() }
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Planner{cfg: cfg, oracle: oracle, pub: pub, log: log, sampler: sampler}
}

// Run partitions corpus across cfg.Workers and runs every worker's
// group/repetition loop to completion, isolating one worker's error from
// the others per the propagation policy.
func (p *Planner) Run(ctx context.Context, corpus *LineCorpus) []Counters {
	shards := Partition(corpus, p.cfg.Workers)
	results := make([]Counters, len(shards))

	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard Shard) {
			defer wg.Done()
			results[i] = p.runWorker(ctx, i, shard)
		}(i, shard)
	}
	wg.Wait()
	return results
}

func (p *Planner) runWorker(ctx context.Context, workerIdx int, shard Shard) Counters {
	var counters Counters
	for g := 0; g < p.cfg.Groups; g++ {
		for r := 0; r < p.cfg.Repeats; r++ {
			for li, line := range shard.Lines {
				select {
				case <-ctx.Done():
					return counters
				default:
				}

				isLastMsg := r == p.cfg.Repeats-1 && li == len(shard.Lines)-1
				p.sendOne(ctx, workerIdx, shard.StartLine+li, line, &counters)

				if !isLastMsg || p.cfg.Gap > 0 {
					sleepCtx(ctx, p.cfg.Gap)
				}
			}
		}

		p.log.Infof("worker %d group %d done: config=%d stats=%d reply=%d",
			workerIdx, g, counters.Config, counters.Stats, counters.Reply)
		if p.sampler != nil {
			if err := p.sampler.Sample(ctx); err != nil {
				p.log.Warnf("worker %d resource sample failed: %v", workerIdx, err)
			}
		}

		isLastGroup := g == p.cfg.Groups-1
		if !isLastGroup || p.cfg.GroupGap > 0 {
			sleepCtx(ctx, p.cfg.GroupGap)
		}
	}
	return counters
}

func (p *Planner) sendOne(ctx context.Context, workerIdx, absoluteLine int, line ParsedLine, counters *Counters) {
	payloadText := line.Record.Payload
	if rewritten, changed, err := p.maybeRewriteTimestamp(payloadText); err == nil && changed {
		payloadText = rewritten
	}

	payloadBytes, err := p.oracle.Encode(payloadText)
	if err != nil {
		p.log.Warnf("worker %d line %d: %v", workerIdx, absoluteLine, err)
		return
	}

	frame, err := p.encodeFrame(line.Record, payloadBytes)
	if err != nil {
		p.log.Warnf("worker %d line %d: %v", workerIdx, absoluteLine, err)
		return
	}

	for _, queueName := range classify.Route(p.cfg.Profile, line.Record.MType, line.Raw) {
		if err := p.pub.LPush(ctx, string(queueName), frame); err != nil {
			p.log.Warnf("worker %d line %d: %v", workerIdx, absoluteLine, err)
			continue
		}
		counters.record(queueName)
	}
}

// maybeRewriteTimestamp substitutes the current time (microseconds since
// epoch) into the first "timestamp: <n>" fragment, reporting whether one was
// found and replaced.
func (p *Planner) maybeRewriteTimestamp(payloadText string) (string, bool, error) {
	m, err := timestampPattern.FindStringMatch(payloadText)
	if err != nil || m == nil {
		return payloadText, false, err
	}
	now := strconv.FormatInt(p.cfg.NowMicros(), 10)
	out, err := timestampPattern.Replace(payloadText, "timestamp: "+now, -1, 1)
	if err != nil {
		return payloadText, false, err
	}
	return out, true, nil
}

func (p *Planner) encodeFrame(rec logline.LineRecord, payload []byte) ([]byte, error) {
	switch p.cfg.Dialect {
	case codec.DialectV2:
		h := codec.HeaderV2{
			OrchId:        uint16(rec.OrchId),
			CustomerId:    uint32(rec.CustomerId),
			ClientId:      uint16(rec.ClientId),
			Type:          uint16(rec.MType),
			TransactionId: uint32(rec.TranId),
		}
		return codec.EncodeV2(h, payload)
	default:
		h := codec.HeaderV3{
			CustomerId:    uint32(rec.CustomerId),
			ClientId:      uint32(rec.ClientId),
			OrchId:        uint16(rec.OrchId),
			Type:          uint16(rec.MType),
			TransactionId: uint32(rec.TranId),
		}
		return codec.EncodeV3(h, payload, nil)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
