package protocol

import "encoding/json"

// BeatSignal is the control payload a server may send in reply to a BEAT,
// instead of a plain OK, to tell the worker to quiet down or terminate.
type BeatSignal struct {
	State string `json:"state"`
}

// DecodeBeatSignal parses a ReplyBulk payload received in response to a
// BEAT command. Any payload lacking a recognized "state" field decodes to
// a zero-value BeatSignal, which callers should treat as "no signal".
func DecodeBeatSignal(payload json.RawMessage) (*BeatSignal, error) {
	var sig BeatSignal
	if err := json.Unmarshal(payload, &sig); err != nil {
		return nil, err
	}

	return &sig, nil
}
