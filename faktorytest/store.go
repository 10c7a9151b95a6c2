package faktorytest

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// store is an in-memory, queue-keyed job store for the fake server: a
// single JSON blob manipulated in place with gjson/sjson, keyed by queue
// name, each value an array of pushed job bodies. The fake server's job
// is to answer FETCH in FIFO-per-queue order, not arbitrary key lookups.
type store struct {
	mu   sync.Mutex
	blob []byte
}

func newStore() *store {
	return &store{blob: []byte("{}")}
}

// push appends job (a raw JSON job body) to the tail of queue's list.
func (s *store) push(queue string, job []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := fmt.Sprintf("%s.-1", queue)

	blob, err := sjson.SetRawBytes(s.blob, path, job)
	if err != nil {
		return err
	}

	s.blob = blob
	return nil
}

// pop removes and returns the head job for the first of queues that has
// one, or (nil, "") if every queue is empty.
func (s *store) pop(queues ...string) ([]byte, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, queue := range queues {
		result := gjson.GetBytes(s.blob, queue)
		if !result.IsArray() || len(result.Array()) == 0 {
			continue
		}

		head := result.Array()[0]
		job := []byte(head.Raw)

		blob, err := sjson.DeleteBytes(s.blob, fmt.Sprintf("%s.0", queue))
		if err == nil {
			s.blob = blob
		}

		return job, queue
	}

	return nil, ""
}

// flush empties every queue.
func (s *store) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = []byte("{}")
}

// size returns the number of pending jobs in queue, for test assertions.
func (s *store) size(queue string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := gjson.GetBytes(s.blob, queue)
	if !result.IsArray() {
		return 0
	}

	return len(result.Array())
}
