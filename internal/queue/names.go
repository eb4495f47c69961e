package queue

import "commtester/internal/classify"

// Queue name constants mirror classify.QueueName's three values plus the
// reserved "_SM" (state-machine) variants the control plane defines but
// this tester never publishes to directly — kept as named constants so a
// caller wiring in a different routing table doesn't have to invent the
// literal strings.
const (
	ServerToOrchCfg     = string(classify.ServerToOrchCfg)
	ServerToOrchSta     = string(classify.ServerToOrchSta)
	ServerToOrchReply   = string(classify.ServerToOrchReply)
	ServerToOrchCfgSM   = ServerToOrchCfg + "_SM"
	ServerToOrchStaSM   = ServerToOrchSta + "_SM"
	ServerToOrchReplySM = ServerToOrchReply + "_SM"
)
