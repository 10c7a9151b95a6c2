package faktory

import (
	"context"
	"net"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// do is the single primitive every command in commands.go funnels
// through. It refuses to write unless the engine is in a writable state,
// encodes the command, then performs the "write, register continuation"
// step as one atomic unit under writeMu so that the readLoop's inbound delivery can
// never interleave in between. If expected is non-empty and the reply is
// an inline status, it is asserted against expected without disturbing
// the queue's ordering guarantee.
func (c *Client) do(ctx context.Context, expected string, parts ...interface{}) (*protocol.Reply, error) {
	return c.dispatch(ctx, expected, false, parts...)
}

func (c *Client) dispatch(ctx context.Context, expected string, forHello bool, parts ...interface{}) (*protocol.Reply, error) {
	c.mu.Lock()
	st := c.st
	conn := c.conn
	c.mu.Unlock()

	if !st.writable(forHello) {
		return nil, &NotWritableError{State: st.String()}
	}

	b, err := protocol.Encode(parts...)
	if err != nil {
		return nil, err
	}

	ch, err := c.writeAndRegister(conn, b)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}

		reply := res.reply

		if replyErr := reply.ErrorOrNil(); replyErr != nil {
			return reply, replyErr
		}

		if expected != "" && reply.Kind == protocol.ReplyInline && reply.Text != expected {
			return reply, &ExpectationError{Expected: expected, Got: reply.Text}
		}

		return reply, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// writeAndRegister writes b to conn and registers a pending continuation
// as a single atomic step, so no reply can arrive for a write the
// pending queue doesn't yet know about.
func (c *Client) writeAndRegister(conn net.Conn, b []byte) (<-chan replyResult, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := conn.Write(b); err != nil {
		return nil, &ConnectionError{Reason: "write failed", Err: err}
	}

	return c.pending.push(), nil
}
