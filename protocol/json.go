package protocol

import (
	"encoding/json"
	"fmt"
)

// validateJSON confirms body is syntactically valid JSON without fully
// unmarshaling it, so Reply.Payload can stay a json.RawMessage for the
// caller to decode into whatever typed shape it expects.
func validateJSON(body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("invalid JSON: %s", truncate(body, 128))
	}

	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}

	return string(b[:n]) + "..."
}
