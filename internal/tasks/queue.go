package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/imspotify/internal/shared"
)

// Sender is the sending half of a [Queue].
type Sender interface {
	Send(cmd Command) error
}

// Queue is an unbounded FIFO of commands with many senders and one receiver.
//
// Send never blocks. After Close, Send reports [shared.ErrQueueClosed] and the receiver
// drains whatever was queued before observing the close.
type Queue struct {
	mu     sync.Mutex
	items  []Command
	closed bool
	ready  chan struct{}
}

// NewQueue creates an open, empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Send appends cmd to the queue.
func (q *Queue) Send(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", shared.ErrInvalidInput)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("%w: dropped %s", shared.ErrQueueClosed, cmd)
	}

	q.items = append(q.items, cmd)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// SendAll sends each command in order, stopping at the first error.
func (q *Queue) SendAll(cmds ...Command) error {
	for _, cmd := range cmds {
		if err := q.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// TryReceive pops the oldest command without waiting.
func (q *Queue) TryReceive() (Command, bool) {
	cmd, ok, _ := q.pop()
	return cmd, ok
}

// Receive blocks until a command is available, the queue is closed and drained, or ctx is done.
func (q *Queue) Receive(ctx context.Context) (Command, error) {
	for {
		cmd, ok, closed := q.pop()
		if ok {
			return cmd, nil
		}
		if closed {
			return nil, shared.ErrQueueClosed
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Ready is signalled after a Send and closed by Close. A signal may be stale; callers re-check with TryReceive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Close stops accepting commands. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ready)
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// pop removes the head under the lock and reports whether the queue was closed at that moment.
func (q *Queue) pop() (cmd Command, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false, q.closed
	}

	cmd = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return cmd, true, q.closed
}
