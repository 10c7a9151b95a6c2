package faktory

import (
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Job", func() {
	It("carries the fields NewJob was given", func() {
		job := NewJob("testJob", "default", 1, "two")

		Expect(job.Jobtype()).To(Equal("testJob"))
		Expect(job.Queue()).To(Equal("default"))
		Expect(job["args"]).To(Equal([]interface{}{1, "two"}))
		Expect(job.Jid()).To(Equal(""))
	})

	Describe("SetJid", func() {
		It("generates a jid when none is given", func() {
			job := NewJob("testJob", "default")

			jid := job.SetJid("")
			Expect(jid).NotTo(BeEmpty())
			Expect(job.Jid()).To(Equal(jid))
		})

		It("preserves a caller-supplied jid", func() {
			job := NewJob("testJob", "default")

			jid := job.SetJid("explicit-jid")
			Expect(jid).To(Equal("explicit-jid"))
			Expect(job.Jid()).To(Equal("explicit-jid"))
		})
	})

	Describe("decodeJob", func() {
		It("round-trips a job through JSON", func() {
			job := NewJob("testJob", "default")
			job.SetJid("abc123")

			body, err := json.Marshal(job)
			Expect(err).To(Succeed())

			decoded, err := decodeJob(body)
			Expect(err).To(Succeed())
			Expect(decoded.Jid()).To(Equal("abc123"))
			Expect(decoded.Jobtype()).To(Equal("testJob"))
		})
	})
})
