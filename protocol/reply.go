package protocol

import "encoding/json"

// Reply is the decoded, closed sum type a Decoder emits for each complete
// frame on the wire. Only the fields relevant to Kind are populated.
type Reply struct {
	Kind ReplyKind

	// Text carries the inline status string for ReplyInline, and the raw
	// error message for ReplyError.
	Text string

	// Payload carries the raw JSON body for ReplyBulk and ReplyHello.
	Payload json.RawMessage
}

// ErrorOrNil returns a *ServerError if the reply is a server-signaled
// error frame, otherwise nil.
func (r *Reply) ErrorOrNil() error {
	if r.Kind == ReplyError {
		return &ServerError{Message: r.Text}
	}

	return nil
}

// ServerError wraps a -message\r\n error frame from the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}
