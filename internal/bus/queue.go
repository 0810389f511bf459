// Package bus moves frames between the CAN interface and the dispatcher:
// the receive queue, the SocketCAN transport, capture replay and the
// outbound senders.
package bus

import (
	"errors"
	"fmt"

	"github.com/Workiva/go-datastructures/queue"

	"canbridge/internal/can"
)

const DefaultQueueHint = 256

// Queue is the receive queue between a bus reader and the dispatcher. Any
// number of goroutines may Push; a single consumer calls Pop.
type Queue struct {
	q *queue.Queue
}

func NewQueue(hint int64) *Queue {
	if hint <= 0 {
		hint = DefaultQueueHint
	}
	return &Queue{q: queue.New(hint)}
}

func (q *Queue) Push(f can.Frame) error {
	if err := q.q.Put(f); err != nil {
		return fmt.Errorf("push frame: %w", err)
	}
	return nil
}

// Pop returns the oldest frame without blocking.
func (q *Queue) Pop() (can.Frame, bool) {
	if q.q.Empty() {
		return can.Frame{}, false
	}
	items, err := q.q.Get(1)
	if err != nil || len(items) == 0 {
		return can.Frame{}, false
	}
	f, ok := items[0].(can.Frame)
	return f, ok
}

func (q *Queue) Len() int64 { return q.q.Len() }

// Close releases the queue. Further pushes fail with ErrQueueClosed.
func (q *Queue) Close() {
	q.q.Dispose()
}

var ErrQueueClosed = queue.ErrDisposed

// IsClosed reports whether err came from pushing to a closed queue.
func IsClosed(err error) bool {
	return errors.Is(err, queue.ErrDisposed)
}
