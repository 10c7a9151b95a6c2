package faktory

import "time"

const (
	// ProtocolVersion is the Faktory wire protocol version this client
	// speaks.
	ProtocolVersion = 2

	// DefaultPort is the default Faktory server port.
	DefaultPort = 7419

	// DefaultSocketTimeout bounds how long a read may idle before the
	// engine logs a soft warning. It is not acted on at the protocol
	// level; the server's BEAT heartbeat is the authoritative liveness
	// check.
	DefaultSocketTimeout = 20 * time.Second

	// DefaultReconnectBaseDelay is the base of the linear reconnect
	// backoff: delay = base * attempt.
	DefaultReconnectBaseDelay = 2 * time.Second

	// DefaultReconnectAttempts is the number of consecutive reconnect
	// attempts permitted before the engine gives up on a session.
	DefaultReconnectAttempts = 2

	// maxBacktraceLines caps the number of backtrace lines transmitted by
	// Fail, regardless of how many the caller supplies.
	maxBacktraceLines = 100
)
