package faktory

import (
	"crypto/sha256"
	"encoding/hex"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("iteratedSHA256", func() {
	It("equals SHA256(pwd||salt) hex-encoded for i == 1", func() {
		sum := sha256.Sum256([]byte("password1" + "dozens"))
		expected := hex.EncodeToString(sum[:])

		Expect(iteratedSHA256("password1", "dozens", 1)).To(Equal(expected))
	})

	It("applies i-1 further rounds of SHA-256 to the raw previous digest for i > 1", func() {
		sum := sha256.Sum256([]byte("password1" + "dozens"))
		digest := sum[:]

		for i := 0; i < 9; i++ {
			sum = sha256.Sum256(digest)
			digest = sum[:]
		}

		expected := hex.EncodeToString(digest)

		Expect(iteratedSHA256("password1", "dozens", 10)).To(Equal(expected))
	})

	It("treats iterations < 1 as 1", func() {
		Expect(iteratedSHA256("pwd", "salt", 0)).To(Equal(iteratedSHA256("pwd", "salt", 1)))
	})
})
