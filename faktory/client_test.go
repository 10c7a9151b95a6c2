package faktory_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/danielwestendorf/faktory-client/faktory"
	"github.com/danielwestendorf/faktory-client/faktorytest"
)

func dialConfig(addr string) *faktory.Config {
	host, port, _ := strings.Cut(addr, ":")
	cfg, _ := faktory.NewConfig(host)
	cfg.Port = atoiMust(port)
	return cfg
}

func atoiMust(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

var _ = Describe("Client", func() {
	var server *faktorytest.Server

	BeforeEach(func() {
		server = faktorytest.New(faktorytest.Options{Addr: "127.0.0.1:0"})
		Expect(server.Start()).To(Succeed())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("happy push/fetch/ack", func() {
		It("round-trips a job through the fake server", func() {
			client := faktory.NewClient(dialConfig(server.Addr()), nil)
			Expect(client.Open(context.Background())).To(Succeed())
			defer client.Close(context.Background())

			job := faktory.NewJob("testJob", "q-abc123", 7)
			jid, err := client.Push(context.Background(), job)
			Expect(err).To(Succeed())
			Expect(len(jid)).To(BeNumerically(">=", 8))

			fetched, err := client.Fetch(context.Background(), "q-abc123")
			Expect(err).To(Succeed())
			Expect(fetched).NotTo(BeNil())
			Expect(fetched.Jid()).To(Equal(jid))
			Expect(fetched.Jobtype()).To(Equal("testJob"))

			err = client.Ack(context.Background(), jid)
			Expect(err).To(Succeed())
		})

		It("returns the caller-supplied jid unchanged if one was set", func() {
			client := faktory.NewClient(dialConfig(server.Addr()), nil)
			Expect(client.Open(context.Background())).To(Succeed())
			defer client.Close(context.Background())

			job := faktory.NewJob("testJob", "q-fixed")
			job.SetJid("fixed-jid-001")

			jid, err := client.Push(context.Background(), job)
			Expect(err).To(Succeed())
			Expect(jid).To(Equal("fixed-jid-001"))
		})
	})

	It("returns nil on an empty fetch and keeps the connection usable", func() {
		client := faktory.NewClient(dialConfig(server.Addr()), nil)
		Expect(client.Open(context.Background())).To(Succeed())
		defer client.Close(context.Background())

		job, err := client.Fetch(context.Background(), "queue-that-is-empty")
		Expect(err).To(Succeed())
		Expect(job).To(BeNil())

		_, err = client.Info(context.Background())
		Expect(err).To(Succeed())
		Expect(client.State()).To(Equal("connected"))
	})

	It("truncates a Fail backtrace to 100 lines", func() {
		client := faktory.NewClient(dialConfig(server.Addr()), nil)
		Expect(client.Open(context.Background())).To(Succeed())
		defer client.Close(context.Background())

		job := faktory.NewJob("testJob", "default")
		jid, err := client.Push(context.Background(), job)
		Expect(err).To(Succeed())

		_, err = client.Fetch(context.Background(), "default")
		Expect(err).To(Succeed())

		backtrace := make([]string, 250)
		for i := range backtrace {
			backtrace[i] = "line"
		}

		err = client.Fail(context.Background(), jid, faktory.FailPayload{
			Message:   "EHANGRY",
			ErrType:   "RuntimeError",
			Backtrace: backtrace,
		})
		Expect(err).To(Succeed())
	})

	It("reconnects after a mid-session disconnect and resumes serving commands", func() {
		cfg := dialConfig(server.Addr())
		// State() keeps reading "connected" until the readLoop notices the
		// dropped socket, so the delay must be long enough for the poll
		// below to observe "reconnecting" first.
		cfg.ReconnectBaseDelay = 100 * time.Millisecond
		cfg.ReconnectAttempts = 2

		client := faktory.NewClient(cfg, nil)
		Expect(client.Open(context.Background())).To(Succeed())
		defer client.Close(context.Background())

		server.DisconnectAll()

		Eventually(func() string {
			return client.State()
		}, "2s", "10ms").Should(Equal("reconnecting"))

		Eventually(func() string {
			return client.State()
		}, "2s", "10ms").Should(Equal("connected"))

		_, err := client.Info(context.Background())
		Expect(err).To(Succeed())
	})
})
