package faktory

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Job is a caller-supplied job descriptor. It is JSON-serializable;
// additional caller-provided keys beyond the ones this client reads pass
// through opaquely.
type Job map[string]interface{}

// NewJob builds a Job with the required fields, leaving Jid to be
// assigned by Push if the caller doesn't set one.
func NewJob(jobtype, queue string, args ...interface{}) Job {
	return Job{
		"jobtype": jobtype,
		"queue":   queue,
		"args":    args,
	}
}

// Jid returns the job's jid, or "" if unset.
func (j Job) Jid() string {
	jid, _ := j["jid"].(string)
	return jid
}

// SetJid assigns jid, generating a new UUID if jid is empty.
func (j Job) SetJid(jid string) string {
	if jid == "" {
		jid = newJid()
	}

	j["jid"] = jid
	return jid
}

// Jobtype returns the job's jobtype, or "" if unset.
func (j Job) Jobtype() string {
	jobtype, _ := j["jobtype"].(string)
	return jobtype
}

// Queue returns the job's queue, or "" if unset.
func (j Job) Queue() string {
	queue, _ := j["queue"].(string)
	return queue
}

// newJid generates an opaque unique job identifier.
func newJid() string {
	return uuid.NewString()
}

// FailPayload describes a job failure, passed to Client.Fail.
type FailPayload struct {
	Message   string   `json:"message"`
	ErrType   string   `json:"errtype,omitempty"`
	Backtrace []string `json:"backtrace,omitempty"`
}

// decodeJob parses a ReplyBulk payload returned from FETCH into a Job.
func decodeJob(payload json.RawMessage) (Job, error) {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}

	return job, nil
}

// decodeInto unmarshals a ReplyBulk payload into an arbitrary structured
// value, for replies (like INFO) whose schema is server-defined.
func decodeInto(payload json.RawMessage, v interface{}) error {
	return json.Unmarshal(payload, v)
}
