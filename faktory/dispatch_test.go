package faktory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// miniServer is a bare-bones, single-connection stand-in for a Faktory
// server: just enough of HI/HELLO to let a real Client complete Open,
// plus a scripted sequence of inline replies for whatever it reads
// afterward. It exists so this file can reach the unexported dispatch
// path without importing faktorytest, which itself imports this
// package.
type miniServer struct {
	listener net.Listener
	replies  chan string
}

func newMiniServer() *miniServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).To(Succeed())

	s := &miniServer{listener: listener, replies: make(chan string, 8)}
	go s.serve()

	return s
}

func (s *miniServer) addr() string {
	return s.listener.Addr().String()
}

func (s *miniServer) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	fmt.Fprintf(conn, "+HI {\"v\":%d}\r\n", ProtocolVersion)

	r := bufio.NewReader(conn)
	if _, err := r.ReadString('\n'); err != nil {
		return
	}

	fmt.Fprint(conn, "+OK\r\n")

	for reply := range s.replies {
		if _, err := r.ReadString('\n'); err != nil {
			return
		}

		fmt.Fprintf(conn, "+%s\r\n", reply)
	}
}

func (s *miniServer) close() {
	close(s.replies)
	s.listener.Close()
}

var _ = Describe("dispatch", func() {
	It("fails only the mismatched operation on an expectation mismatch, leaving the connection usable", func() {
		server := newMiniServer()
		defer server.close()

		host, port := splitHostPort(server.addr())
		cfg, err := NewConfig(host)
		Expect(err).To(Succeed())
		cfg.Port = port

		client := NewClient(cfg, nil)
		Expect(client.Open(context.Background())).To(Succeed())
		defer client.Close(context.Background())

		server.replies <- "OK"
		_, err = client.do(context.Background(), "NOT OK", protocol.PUSH, map[string]string{"jid": "abc"})

		var expErr *ExpectationError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &expErr)).To(BeTrue())
		Expect(expErr.Expected).To(Equal("NOT OK"))
		Expect(expErr.Got).To(Equal("OK"))

		server.replies <- "OK"
		_, err = client.do(context.Background(), "OK", protocol.PUSH, map[string]string{"jid": "def"})
		Expect(err).To(Succeed())
	})
})

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	Expect(err).To(Succeed())

	port := 0
	for _, c := range portStr {
		port = port*10 + int(c-'0')
	}

	return host, port
}
