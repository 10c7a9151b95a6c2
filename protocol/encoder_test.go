package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/danielwestendorf/faktory-client/protocol"
)

var _ = Describe("Encode", func() {
	It("joins string tokens with a single space", func() {
		b, err := protocol.Encode(protocol.FETCH, "default", "critical")
		Expect(err).To(Succeed())
		Expect(string(b)).To(Equal("FETCH default critical\r\n"))
	})

	It("renders a map argument as compact JSON", func() {
		b, err := protocol.Encode(protocol.ACK, map[string]string{"jid": "abc123"})
		Expect(err).To(Succeed())
		Expect(string(b)).To(Equal(`ACK {"jid":"abc123"}` + "\r\n"))
	})

	It("terminates with \\r\\n", func() {
		b, err := protocol.Encode(protocol.INFO)
		Expect(err).To(Succeed())
		Expect(string(b)).To(HaveSuffix("\r\n"))
	})

	It("renders a bare verb with no arguments", func() {
		b, err := protocol.Encode(protocol.FLUSH)
		Expect(err).To(Succeed())
		Expect(string(b)).To(Equal("FLUSH\r\n"))
	})
})
