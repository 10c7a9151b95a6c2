package faktory

import (
	"container/list"
	"sync"

	"github.com/danielwestendorf/faktory-client/protocol"
)

// replyResult is what a pending entry is resumed with: exactly one of
// Reply or Err is set.
type replyResult struct {
	reply *protocol.Reply
	err   error
}

// pendingQueue is the strict FIFO of continuations awaiting a reply.
// Faktory's wire protocol carries no per-request ID, so correspondence
// between a write and its reply is purely by write order: whatever was
// written first is resolved by the first reply that arrives.
type pendingQueue struct {
	mu      sync.Mutex
	entries *list.List
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{entries: list.New()}
}

// push registers a new continuation at the tail of the queue and returns
// the channel it will be resumed on exactly once.
func (q *pendingQueue) push() <-chan replyResult {
	ch := make(chan replyResult, 1)

	q.mu.Lock()
	q.entries.PushBack(ch)
	q.mu.Unlock()

	return ch
}

// resolveHead pops the head of the queue and resumes it with result. It
// reports false if the queue was empty, which is a protocol
// desynchronization the caller must treat as fatal to the current
// session.
func (q *pendingQueue) resolveHead(result replyResult) bool {
	q.mu.Lock()
	front := q.entries.Front()
	if front == nil {
		q.mu.Unlock()
		return false
	}
	q.entries.Remove(front)
	q.mu.Unlock()

	ch := front.Value.(chan replyResult)
	ch <- result
	close(ch)

	return true
}

// drain resumes every remaining entry, in FIFO order, with err, then
// empties the queue. Called on every transition to Closed or
// Reconnecting.
func (q *pendingQueue) drain(err error) {
	q.mu.Lock()
	entries := q.entries
	q.entries = list.New()
	q.mu.Unlock()

	for e := entries.Front(); e != nil; e = e.Next() {
		ch := e.Value.(chan replyResult)
		ch <- replyResult{err: err}
		close(ch)
	}
}

// len returns the current queue depth, for tests and invariant checks.
func (q *pendingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.entries.Len()
}
