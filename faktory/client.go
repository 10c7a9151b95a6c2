package faktory

import (
	"context"
	"net"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// Client is the connection engine: it owns the socket, drives the
// handshake, runs the lifecycle state machine (state.go), and
// demultiplexes replies through a pendingQueue. It is safe for
// concurrent use by multiple goroutines issuing overlapping commands.
type Client struct {
	cfg *Config
	log *zap.Logger

	mu   sync.Mutex
	st   state
	conn net.Conn
	dec  *protocol.Decoder

	// writeMu serializes "write, register continuation", and readLoop
	// holds it while resolving the queue head, so inbound frame delivery
	// can never interleave between a write and its continuation.
	writeMu sync.Mutex
	pending *pendingQueue

	attempt int

	// OnFatal is invoked, if set, when the reconnect budget is exhausted
	// mid-session. It runs on the readLoop goroutine; callers should not
	// block in it.
	OnFatal func(error)

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewClient constructs a Client bound to cfg. The socket is not opened
// until Open is called.
func NewClient(cfg *Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		cfg:     cfg,
		log:     log.Named("faktory"),
		st:      stateIdle,
		pending: newPendingQueue(),
	}
}

// Open dials the server, performs the handshake, and blocks until the
// connection reaches Connected (or fails). On success the engine's
// background readLoop is running and the Client is ready for commands.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	c.st = stateConnecting
	c.mu.Unlock()

	if err := c.dialAndHandshake(ctx); err != nil {
		c.mu.Lock()
		c.st = stateClosed
		c.mu.Unlock()
		return err
	}

	c.closeCh = make(chan struct{})
	c.wg.Add(1)
	go c.readLoop()

	return nil
}

func (c *Client) dialAndHandshake(ctx context.Context) error {
	conn, err := net.Dial("tcp", c.cfg.addr())
	if err != nil {
		return &ConnectionError{Reason: "failed to dial " + c.cfg.addr(), Err: err}
	}

	c.mu.Lock()
	c.conn = conn
	c.dec = protocol.NewDecoder(conn)
	c.st = stateHandshaking
	c.mu.Unlock()

	if err := c.handshake(ctx); err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.st = stateConnected
	c.attempt = 0
	c.mu.Unlock()

	return nil
}

// Close performs an explicit, deliberate shutdown: it writes END, then
// half-closes the write side and destroys the socket. The engine marks
// Closing first so the ensuing socket-close event on the readLoop is not
// mistaken for an unexpected disconnect.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	writable := c.st == stateConnected
	c.st = stateClosing
	conn := c.conn
	c.mu.Unlock()

	var errs error

	if writable && conn != nil {
		b, err := protocol.Encode(protocol.END)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if _, err := conn.Write(b); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if conn != nil {
		if tcp, ok := conn.(*net.TCPConn); ok {
			if err := tcp.CloseWrite(); err != nil {
				errs = multierr.Append(errs, err)
			}
		}

		if err := conn.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.closeCh != nil {
		select {
		case <-c.closeCh:
		default:
			close(c.closeCh)
		}
	}

	c.wg.Wait()

	c.mu.Lock()
	c.st = stateClosed
	c.mu.Unlock()

	c.pending.drain(&ConnectionError{Reason: "connection closed"})

	return errs
}

// State returns the engine's current lifecycle state, for diagnostics.
func (c *Client) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.st.String()
}

// ReconnectAttempt returns the current consecutive-reconnect-attempt
// count, for diagnostics.
func (c *Client) ReconnectAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.attempt
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return h
}
