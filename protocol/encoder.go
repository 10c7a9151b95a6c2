package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var terminator = []byte("\r\n")

// Encode renders an outbound command tuple to wire bytes. The first
// element is conventionally a Verb; every element is rendered as: a
// string is written unchanged, anything else is compact-JSON encoded.
// Elements are space-joined and CRLF-terminated.
//
// Encode performs no escaping — callers must ensure any JSON payload
// contains no literal CR/LF (encoding/json already escapes them, so a
// JSON-object argument is always safe; a raw string argument containing
// CR/LF is a caller bug).
func Encode(parts ...interface{}) ([]byte, error) {
	var buf bytes.Buffer

	for i, part := range parts {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch v := part.(type) {
		case string:
			buf.WriteString(v)
		case Verb:
			buf.WriteString(string(v))
		case []byte:
			buf.Write(v)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("protocol: failed to encode argument %d: %w", i, err)
			}
			buf.Write(b)
		}
	}

	buf.Write(terminator)

	return buf.Bytes(), nil
}
