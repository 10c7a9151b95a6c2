package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/danielwestendorf/faktory-client/protocol"
)

var _ = Describe("DecodeBeatSignal", func() {
	It("decodes a quiet signal", func() {
		sig, err := protocol.DecodeBeatSignal([]byte(`{"state":"quiet"}`))
		Expect(err).To(Succeed())
		Expect(sig.State).To(Equal("quiet"))
	})

	It("decodes an empty object to the zero value", func() {
		sig, err := protocol.DecodeBeatSignal([]byte(`{}`))
		Expect(err).To(Succeed())
		Expect(sig.State).To(Equal(""))
	})

	It("errors on malformed JSON", func() {
		_, err := protocol.DecodeBeatSignal([]byte(`not json`))
		Expect(err).To(HaveOccurred())
	})
})
