// Package classify maps a parsed line's (mtype, raw text) to one of the
// three logical Redis queues the replay engine publishes to.
package classify

import "strings"

// QueueName identifies one of the three logical queues a frame can be
// routed to.
type QueueName string

const (
	ServerToOrchCfg   QueueName = "ServerToOrchCfg"
	ServerToOrchSta   QueueName = "ServerToOrchSta"
	ServerToOrchReply QueueName = "ServerToOrchReply"
)

// Profile selects the deployment's record-emission behavior.
type Profile int

const (
	// AllInOne emits one record per parsed line, routed per Classify.
	AllInOne Profile = iota
	// Patch emits two records per parsed line, both unconditionally routed
	// to ServerToOrchCfg regardless of what Classify would otherwise say.
	// This duplicate-emission quirk is carried over from the deployment
	// this was distilled from and is intentional, not a bug to fix.
	Patch
)

// Classify returns the queue a single line belongs to under the
// unconditional routing rule: stats if mtype > 600, reply if mtype < 200
// or mtype == 402 or the line contains the literal substring "reply
// message", config otherwise.
func Classify(mtype int, line string) QueueName {
	switch {
	case mtype > 600:
		return ServerToOrchSta
	case mtype < 200 || mtype == 402 || strings.Contains(line, "reply message"):
		return ServerToOrchReply
	default:
		return ServerToOrchCfg
	}
}

// Route applies a deployment Profile to one parsed line, returning the
// queue(s) it emits to — one entry under AllInOne, two (both
// ServerToOrchCfg) under Patch.
func Route(profile Profile, mtype int, line string) []QueueName {
	if profile == Patch {
		return []QueueName{ServerToOrchCfg, ServerToOrchCfg}
	}
	return []QueueName{Classify(mtype, line)}
}
