// Package protocol implements the wire codec for the Faktory job server
// protocol (v2).
//
// This is a RESP-like, line-oriented protocol. We've stolen the framing
// ideas directly from Redis: simple strings, errors, and length-prefixed
// bulk strings, all \r\n terminated.
//
// === Client Commands
//
// Outbound commands are a verb followed by zero or more space-separated
// arguments and a trailing \r\n:
//
//	PUSH {"jid":"...","jobtype":"...","queue":"default","args":[]}\r\n
//	FETCH default priority\r\n
//	ACK {"jid":"..."}\r\n
//	FAIL {"jid":"...","errtype":"...","message":"...","backtrace":[]}\r\n
//	BEAT {"wid":"..."}\r\n
//	INFO\r\n
//	FLUSH\r\n
//	END\r\n
//
// Structured arguments are rendered as compact JSON. The encoder performs
// no escaping; callers are responsible for ensuring any JSON payload
// contains no literal CR/LF (JSON already escapes them).
//
// === Server Replies
//
// Inbound replies are framed RESP-style:
//
//	+OK\r\n                     simple string ("inline")
//	-ERR some message\r\n       error
//	$13\r\n{"jobtype":1}\r\n    bulk string (JSON body, length-prefixed)
//	$-1\r\n                     null bulk ("no job")
//
// One reply shape gets special-cased on top of that framing: the initial
// handshake greeting is sent as an inline string whose text happens to
// start with "HI " followed by a JSON object:
//
//	+HI {"v":2,"s":"abc123","i":10}\r\n
//
// === Handshake
//
//	> (connect)
//	< +HI {"v":2}\r\n
//	> HELLO {"hostname":"box1","pid":1234,"labels":["golang"],"v":2}\r\n
//	< +OK\r\n
//
// === Example exchange
//
//	> PUSH {"jobtype":"SendEmail","queue":"default","args":["bob@example.com"]}\r\n
//	< +OK\r\n
//	> FETCH default\r\n
//	< $53\r\n{"jid":"abc","jobtype":"SendEmail","queue":"default"}\r\n
//	> ACK {"jid":"abc"}\r\n
//	< +OK\r\n
package protocol
