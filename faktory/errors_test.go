package faktory

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("error taxonomy", func() {
	It("ConnectionError unwraps to its cause", func() {
		cause := errors.New("dial tcp: refused")
		err := &ConnectionError{Reason: "failed to dial", Err: cause}

		Expect(errors.Unwrap(err)).To(Equal(cause))
		Expect(err.Error()).To(ContainSubstring("failed to dial"))
	})

	It("ProtocolError unwraps to its cause", func() {
		cause := errors.New("short frame")
		err := &ProtocolError{Reason: "malformed reply", Err: cause}

		Expect(errors.Unwrap(err)).To(Equal(cause))
	})

	It("ExpectationError names both what was expected and what arrived", func() {
		err := &ExpectationError{Expected: "OK", Got: "PONG"}

		Expect(err.Error()).To(ContainSubstring("OK"))
		Expect(err.Error()).To(ContainSubstring("PONG"))
	})

	It("NotWritableError names the offending state", func() {
		err := &NotWritableError{State: "closed"}

		Expect(err.Error()).To(ContainSubstring("closed"))
	})
})
