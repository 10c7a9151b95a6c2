package faktory

import (
	"context"

	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// Push submits job to the server. If job has no jid, one is generated
// and assigned before transmission. Returns the job's jid.
func (c *Client) Push(ctx context.Context, job Job) (string, error) {
	jid := job.SetJid(job.Jid())

	if _, err := c.do(ctx, "OK", protocol.PUSH, job); err != nil {
		return "", err
	}

	c.log.Debug("pushed job", zap.String("jid", jid), zap.String("queue", job.Queue()))

	return jid, nil
}

// Fetch requests the next job from one of the given queues, checked in
// the order supplied. It returns (nil, nil) if no job was available.
func (c *Client) Fetch(ctx context.Context, queues ...string) (Job, error) {
	parts := make([]interface{}, 0, len(queues)+1)
	parts = append(parts, protocol.FETCH)
	for _, q := range queues {
		parts = append(parts, q)
	}

	reply, err := c.do(ctx, "", parts...)
	if err != nil {
		return nil, err
	}

	if reply.Kind == protocol.ReplyEmpty {
		return nil, nil
	}

	return decodeJob(reply.Payload)
}

// Ack acknowledges successful completion of the job identified by jid.
func (c *Client) Ack(ctx context.Context, jid string) error {
	_, err := c.do(ctx, "OK", protocol.ACK, map[string]string{"jid": jid})
	return err
}

// Fail reports a job failure. The backtrace carried in payload is
// truncated to at most 100 lines, regardless of how many the caller
// supplies.
func (c *Client) Fail(ctx context.Context, jid string, payload FailPayload) error {
	if len(payload.Backtrace) > maxBacktraceLines {
		payload.Backtrace = payload.Backtrace[:maxBacktraceLines]
	}

	body := map[string]interface{}{
		"jid":     jid,
		"message": payload.Message,
	}

	if payload.ErrType != "" {
		body["errtype"] = payload.ErrType
	}

	if payload.Backtrace != nil {
		body["backtrace"] = payload.Backtrace
	}

	_, err := c.do(ctx, "OK", protocol.FAIL, body)
	return err
}

// Beat sends a liveness heartbeat for the configured worker ID. It
// returns "OK" on a plain inline reply, or the server-signaled state
// (e.g. "quiet", "terminate") if the server responds with a bulk payload
// instead.
func (c *Client) Beat(ctx context.Context) (string, error) {
	reply, err := c.do(ctx, "", protocol.BEAT, map[string]string{"wid": c.cfg.WorkerID})
	if err != nil {
		return "", err
	}

	if reply.Kind == protocol.ReplyInline {
		return reply.Text, nil
	}

	sig, err := protocol.DecodeBeatSignal(reply.Payload)
	if err != nil {
		return "", &ProtocolError{Reason: "malformed BEAT signal", Err: err}
	}

	return sig.State, nil
}

// Info requests server introspection data and returns the decoded bulk
// payload.
func (c *Client) Info(ctx context.Context) (map[string]interface{}, error) {
	reply, err := c.do(ctx, "", protocol.INFO)
	if err != nil {
		return nil, err
	}

	var info map[string]interface{}
	if err := decodeInto(reply.Payload, &info); err != nil {
		return nil, &ProtocolError{Reason: "malformed INFO payload", Err: err}
	}

	return info, nil
}

// Flush removes all data from the server. It returns the server's
// inline reply text, typically "OK".
func (c *Client) Flush(ctx context.Context) (string, error) {
	reply, err := c.do(ctx, "", protocol.FLUSH)
	if err != nil {
		return "", err
	}

	return reply.Text, nil
}
