package faktory

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// handshake performs the HI/HELLO exchange synchronously on the caller's
// goroutine; it runs before the readLoop starts, so there is no
// concurrency to guard against here.
func (c *Client) handshake(ctx context.Context) error {
	_ = ctx

	greeting, err := c.dec.Decode()
	if err != nil {
		return &HandshakeError{Reason: "failed to read HI greeting: " + err.Error()}
	}

	if greeting.Kind != protocol.ReplyHello {
		return &HandshakeError{Reason: "expected HI greeting, got " + greeting.Kind.String()}
	}

	var hello protocol.HelloPayload
	if err := json.Unmarshal(greeting.Payload, &hello); err != nil {
		return &HandshakeError{Reason: "malformed HI payload: " + err.Error()}
	}

	if hello.Version != ProtocolVersion {
		return &HandshakeError{Reason: "server speaks protocol version unsupported by this client"}
	}

	ahoy := protocol.AhoyPayload{
		Hostname: hostname(),
		Labels:   c.cfg.Labels,
		Version:  ProtocolVersion,
	}

	if c.cfg.WorkerID != "" {
		ahoy.PID = os.Getpid()
		ahoy.WID = c.cfg.WorkerID
	}

	if hello.Salt != "" {
		ahoy.PasswordHash = iteratedSHA256(c.cfg.Password, hello.Salt, hello.Iterations)
	}

	b, err := protocol.Encode(protocol.HELLO, ahoy)
	if err != nil {
		return &HandshakeError{Reason: "failed to encode HELLO: " + err.Error()}
	}

	if _, err := c.conn.Write(b); err != nil {
		return &HandshakeError{Reason: "failed to write HELLO: " + err.Error()}
	}

	reply, err := c.dec.Decode()
	if err != nil {
		return &HandshakeError{Reason: "failed to read HELLO reply: " + err.Error()}
	}

	if reply.Kind != protocol.ReplyInline || reply.Text != "OK" {
		return &HandshakeError{Reason: "server rejected HELLO"}
	}

	c.log.Info("handshake complete", zap.String("host", c.cfg.Host), zap.Int("port", c.cfg.Port))

	return nil
}
