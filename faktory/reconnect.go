package faktory

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

// readLoop owns the socket's read side for the lifetime of a session. It
// decodes one frame at a time and resolves the pending queue's head with
// each. On a read error it hands off to reconnect handling, which either
// restarts this same loop after a successful reconnect or returns for
// good once the session is deliberately closed or the reconnect budget
// is exhausted.
//
// Before each decode it arms a read deadline of cfg.SocketTimeout, if
// set. A deadline expiring with no frame to show for it is not a
// disconnect: Faktory's BEAT heartbeat is the authoritative liveness
// check, so an idle read is only logged as a soft warning and the loop
// re-arms and keeps waiting.
func (c *Client) readLoop() {
	defer c.wg.Done()

	log := c.log.Named("readLoop")

	for {
		c.mu.Lock()
		conn := c.conn
		timeout := c.cfg.SocketTimeout
		c.mu.Unlock()

		if timeout > 0 && conn != nil {
			conn.SetReadDeadline(time.Now().Add(timeout))
		}

		reply, err := c.dec.Decode()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Warn("socket idle, no frame received within timeout", zap.Duration("timeout", timeout))
				continue
			}

			if !c.handleDisconnect(log, err) {
				return
			}
			continue
		}

		// Holding writeMu keeps this from running between a writer's
		// Write and its pending.push.
		c.writeMu.Lock()
		resolved := c.pending.resolveHead(replyResult{reply: reply})
		c.writeMu.Unlock()

		if !resolved {
			if !c.handleDisconnect(log, &ProtocolError{Reason: "reply arrived with an empty pending queue"}) {
				return
			}
		}
	}
}

// handleDisconnect reacts to a lost connection. It returns true if the
// caller's read loop should keep going against a freshly reconnected
// socket, false if the read loop should exit (deliberate close, or the
// reconnect budget was exhausted).
func (c *Client) handleDisconnect(log *zap.Logger, cause error) bool {
	c.mu.Lock()
	deliberate := c.st == stateClosing || c.st == stateClosed
	c.mu.Unlock()

	if deliberate {
		return false
	}

	log.Warn("connection lost, reconnecting", zap.Error(cause))

	c.pending.drain(&ConnectionError{Reason: "connection lost", Err: cause})

	c.mu.Lock()
	c.st = stateReconnecting
	c.attempt++
	attempt := c.attempt
	c.mu.Unlock()

	if attempt > c.cfg.ReconnectAttempts {
		fatal := &ConnectionError{Reason: "reconnect budget exhausted", Err: cause}

		c.mu.Lock()
		c.st = stateClosed
		c.mu.Unlock()

		log.Error("reconnect budget exhausted, giving up", zap.Int("attempts", attempt-1))

		if c.OnFatal != nil {
			c.OnFatal(fatal)
		}

		return false
	}

	delay := c.cfg.ReconnectBaseDelay * time.Duration(attempt)

	select {
	case <-time.After(delay):
	case <-c.closeCh:
		return false
	}

	c.mu.Lock()
	stale := c.conn
	c.st = stateConnecting
	c.mu.Unlock()

	if stale != nil {
		stale.Close()
	}

	if err := c.dialAndHandshake(context.Background()); err != nil {
		log.Error("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		return c.handleDisconnect(log, err)
	}

	log.Info("reconnected", zap.Int("afterAttempts", attempt))

	return true
}
