package faktorytest

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/faktory"
)

// Options configures a Server.
type Options struct {
	// Addr to listen on, e.g. "127.0.0.1:0" for an ephemeral port.
	Addr string

	// Password, if set, is the password the fake server demands during
	// the handshake; HELLO replies are validated against it.
	Password string

	// Salt and Iterations, if Password is set, are sent in the HI
	// greeting and used to validate the client's pwdhash.
	Salt       string
	Iterations int

	Log *zap.Logger
}

// Server is a minimal, in-process Faktory server used to drive
// end-to-end tests without a real Faktory install. It accepts
// connections with a shared listener, tracks each live conn so it can
// be forcibly dropped, and serves the Faktory command set line by line.
type Server struct {
	opts Options
	log  *zap.Logger

	listener net.Listener
	store    *store

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New constructs a Server. Call Start to begin accepting connections.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		opts:  opts,
		log:   log.Named("faktorytest"),
		store: newStore(),
		conns: make(map[net.Conn]struct{}),
	}
}

// Start begins listening and accepting connections in the background.
func (s *Server) Start() error {
	listener, err := reuseport.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops accepting new connections and closes every active
// connection.
func (s *Server) Close() error {
	var errs error

	if err := s.listener.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}

	s.mu.Lock()
	for conn := range s.conns {
		if err := conn.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	return errs
}

// DisconnectAll forcibly closes every active client connection without
// stopping the listener, simulating an unexpected mid-session close.
func (s *Server) DisconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}
}

// QueueSize returns the number of pending jobs in queue, for assertions.
func (s *Server) QueueSize(queue string) int {
	return s.store.size(queue)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	log := s.log.Named("conn")

	if err := s.greet(conn); err != nil {
		log.Warn("handshake failed", zap.Error(err))
		return
	}

	r := bufio.NewReader(conn)

	for {
		req, err := readRequest(r)
		if err != nil {
			return
		}

		if err := s.dispatch(conn, req); err != nil {
			log.Warn("failed to serve request", zap.String("verb", req.verb), zap.Error(err))
			return
		}

		if req.verb == "END" {
			return
		}
	}
}

func (s *Server) greet(conn net.Conn) error {
	hello := fmt.Sprintf(`{"v":%d`, faktory.ProtocolVersion)
	if s.opts.Password != "" {
		hello += fmt.Sprintf(`,"s":%q,"i":%d`, s.opts.Salt, s.opts.Iterations)
	}
	hello += "}"

	if _, err := fmt.Fprintf(conn, "+HI %s\r\n", hello); err != nil {
		return err
	}

	r := bufio.NewReader(conn)
	req, err := readRequest(r)
	if err != nil {
		return err
	}

	if req.verb != "HELLO" {
		return fmt.Errorf("faktorytest: expected HELLO, got %s", req.verb)
	}

	var ahoy map[string]interface{}
	if err := req.json(&ahoy); err != nil {
		return err
	}

	if s.opts.Password != "" {
		expected := expectedPasswordHash(s.opts.Password, s.opts.Salt, s.opts.Iterations)
		if ahoy["pwdhash"] != expected {
			fmt.Fprintf(conn, "-ERR invalid password\r\n")
			return fmt.Errorf("faktorytest: invalid password")
		}
	}

	_, err = fmt.Fprint(conn, "+OK\r\n")
	return err
}

func (s *Server) dispatch(conn net.Conn, req *request) error {
	switch req.verb {
	case "PUSH":
		return s.handlePush(conn, req)
	case "FETCH":
		return s.handleFetch(conn, req)
	case "ACK":
		return s.handleSimpleOK(conn)
	case "FAIL":
		return s.handleSimpleOK(conn)
	case "BEAT":
		return s.handleBeat(conn)
	case "INFO":
		return s.handleInfo(conn)
	case "FLUSH":
		s.store.flush()
		return s.handleSimpleOK(conn)
	case "END":
		_, err := fmt.Fprint(conn, "+OK\r\n")
		return err
	default:
		_, err := fmt.Fprintf(conn, "-ERR unknown command %s\r\n", req.verb)
		if err != nil {
			return err
		}
		return ErrUnknownVerb
	}
}

func (s *Server) handlePush(conn net.Conn, req *request) error {
	var job map[string]interface{}
	if err := req.json(&job); err != nil {
		_, werr := fmt.Fprintf(conn, "-ERR malformed job: %v\r\n", err)
		return werr
	}

	queue, _ := job["queue"].(string)
	if queue == "" {
		queue = "default"
	}

	if err := s.store.push(queue, []byte(req.rest)); err != nil {
		return err
	}

	_, err := fmt.Fprint(conn, "+OK\r\n")
	return err
}

func (s *Server) handleFetch(conn net.Conn, req *request) error {
	queues := req.queues()
	if len(queues) == 0 {
		queues = []string{"default"}
	}

	job, _ := s.store.pop(queues...)
	if job == nil {
		_, err := fmt.Fprint(conn, "$-1\r\n")
		return err
	}

	_, err := fmt.Fprintf(conn, "$%d\r\n%s\r\n", len(job), job)
	return err
}

func (s *Server) handleSimpleOK(conn net.Conn) error {
	_, err := fmt.Fprint(conn, "+OK\r\n")
	return err
}

func (s *Server) handleBeat(conn net.Conn) error {
	_, err := fmt.Fprint(conn, "+OK\r\n")
	return err
}

func (s *Server) handleInfo(conn net.Conn) error {
	body := `{"server_utc_time":"00:00:00 UTC","faktory":{"queues":{}}}`
	_, err := fmt.Fprintf(conn, "$%d\r\n%s\r\n", len(body), body)
	return err
}

func expectedPasswordHash(password, salt string, iterations int) string {
	return faktory.ComputePasswordHash(password, salt, iterations)
}
