package peer

import (
	"encoding/json"

	"commtester/internal/codec"
	"commtester/internal/errs"
)

// subscribeCriterion is one entry of the Subscribe frame's criteria array.
type subscribeCriterion struct {
	Field string `json:"field"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

// subscribeBody is the Subscribe frame's JSON payload shape, matching the
// reference deployment's field order (queueSize, queueBytes, criteria).
type subscribeBody struct {
	QueueSize  int                  `json:"queueSize"`
	QueueBytes int                  `json:"queueBytes"`
	Criteria   []subscribeCriterion `json:"criteria"`
}

const (
	defaultQueueSize  = 1024
	defaultQueueBytes = 16777216
)

// Range is an inclusive [Start, End] bound on one subscription axis.
type Range struct {
	Start int
	End   int
}

// BuildSubscribeFrame composes the v3 Subscribe frame an orchestrator sends
// immediately on connect: a JSON blob (UTF-8, NUL-terminated) describing
// the msgType/customerId/clientId ranges to receive, framed with the given
// orchId and header type.
func BuildSubscribeFrame(orchId int, msgType, customerId, clientId Range, frameType int) ([]byte, error) {
	body := subscribeBody{
		QueueSize:  defaultQueueSize,
		QueueBytes: defaultQueueBytes,
		Criteria: []subscribeCriterion{
			{Field: "msgType", From: msgType.Start, To: msgType.End},
			{Field: "customerId", From: customerId.Start, To: customerId.End},
			{Field: "clientId", From: clientId.Start, To: clientId.End},
		},
	}
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.BadPayload, "marshal subscribe body", err)
	}
	jsonBytes = append(jsonBytes, 0) // NUL-terminated per the wire contract

	h := codec.HeaderV3{
		OrchId: uint16(orchId),
		Type:   uint16(frameType),
	}
	return codec.EncodeV3(h, jsonBytes, nil)
}
