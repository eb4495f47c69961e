// Package errs defines the error taxonomy shared by the replay engine and
// the TLS peer. Callers distinguish kinds with errors.Is against the
// sentinel values below; wrapped errors carry the offending detail in their
// message.
package errs

import "errors"

// Kind classifies a failure per the propagation policy: some kinds are
// non-fatal and the caller should skip-and-continue, others are fatal to
// the connection or worker that raised them.
type Kind string

const (
	// MalformedLine: a log line is missing one of the required markers.
	// Non-fatal — the replay planner skips the line and keeps going.
	MalformedLine Kind = "malformed_line"

	// BadPayload: the protobuf text bridge rejected a payload fragment.
	// Non-fatal in replay (skip the line); fatal in the peer if the
	// payload was meant to go out on the wire.
	BadPayload Kind = "bad_payload"

	// BadFrame: bad length, bad checksum, bad version/magic, or a PKCS#7
	// unpad failure. Fatal for the connection that produced it.
	BadFrame Kind = "bad_frame"

	// QueueFull: the orchestrator's inbound echo queue is saturated.
	// Non-fatal — the offending message is dropped and logged.
	QueueFull Kind = "queue_full"

	// Transport: connect/TLS/read/write failure. Fatal for the connection.
	Transport Kind = "transport"

	// ConfigError: CLI arguments are missing or mutually inconsistent.
	ConfigError Kind = "config_error"
)

var (
	ErrMalformedLine = errors.New(string(MalformedLine))
	ErrBadPayload    = errors.New(string(BadPayload))
	ErrBadFrame      = errors.New(string(BadFrame))
	ErrQueueFull     = errors.New(string(QueueFull))
	ErrTransport     = errors.New(string(Transport))
	ErrConfigError   = errors.New(string(ConfigError))
)

// sentinelFor maps a Kind to its wrapped sentinel so errors.Is works
// regardless of which helper constructed the error.
func sentinelFor(k Kind) error {
	switch k {
	case MalformedLine:
		return ErrMalformedLine
	case BadPayload:
		return ErrBadPayload
	case BadFrame:
		return ErrBadFrame
	case QueueFull:
		return ErrQueueFull
	case Transport:
		return ErrTransport
	case ConfigError:
		return ErrConfigError
	default:
		return errors.New(string(k))
	}
}

// Error is a Kind-tagged error that wraps a sentinel so errors.Is(err,
// errs.ErrBadFrame) works after it has traveled through fmt.Errorf("%w").
type Error struct {
	Kind    Kind
	Detail  string
	Wrapped error
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Wrapped: sentinelFor(kind)}
}

func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Wrapped: cause}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}
