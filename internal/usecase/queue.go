package usecase

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// TaskQueue owns the FIFO list key. The operator LPUSHes onto the head, the
// loop RPOPs from the tail, so tasks are served in enqueue order.
type TaskQueue struct {
	Store     domain.KVStore
	QueueName string
}

// NewTaskQueue constructs a TaskQueue over a connected store.
func NewTaskQueue(store domain.KVStore, queueName string) TaskQueue {
	return TaskQueue{Store: store, QueueName: queueName}
}

// Enqueue normalizes, validates and pushes tasks in argument order. The
// batch is validated up front; nothing is pushed when any task is bad.
func (q TaskQueue) Enqueue(ctx domain.Context, tasks ...domain.Task) error {
	payloads := make([][]byte, 0, len(tasks))
	for _, t := range tasks {
		t.Normalize()
		if err := t.Validate(); err != nil {
			return err
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task %s: %w", t.TaskID, err)
		}
		payloads = append(payloads, raw)
	}
	if len(payloads) == 0 {
		return nil
	}
	if err := retryTransient(ctx, func() error {
		return q.Store.LPush(ctx, q.QueueName, payloads...)
	}); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

// Dequeue pops the oldest queued task. An empty queue returns nil without
// error; a payload that no longer parses is an invariant violation.
func (q TaskQueue) Dequeue(ctx domain.Context) (*domain.Task, error) {
	var raw []byte
	err := retryTransient(ctx, func() error {
		var popErr error
		raw, popErr = q.Store.RPop(ctx, q.QueueName)
		return popErr
	})
	if errors.Is(err, domain.ErrQueueEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	var t domain.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: queued payload corrupt: %v", domain.ErrInvariantViolation, err)
	}
	t.Normalize()
	return &t, nil
}

// Len reports how many tasks are waiting.
func (q TaskQueue) Len(ctx domain.Context) (int64, error) {
	var n int64
	err := retryTransient(ctx, func() error {
		var lenErr error
		n, lenErr = q.Store.LLen(ctx, q.QueueName)
		return lenErr
	})
	if err != nil {
		return 0, fmt.Errorf("queue len: %w", err)
	}
	return n, nil
}

// Peek returns up to n waiting tasks, oldest first, without consuming them.
// Used by the status command to show what runs next.
func (q TaskQueue) Peek(ctx domain.Context, n int64) ([]domain.Task, error) {
	if n <= 0 {
		return nil, nil
	}
	var raws [][]byte
	err := retryTransient(ctx, func() error {
		var rangeErr error
		raws, rangeErr = q.Store.LRange(ctx, q.QueueName, -n, -1)
		return rangeErr
	})
	if err != nil {
		return nil, fmt.Errorf("queue peek: %w", err)
	}
	// The tail of an LPUSH-fed list is the oldest entry; walk backwards so
	// callers see dequeue order.
	out := make([]domain.Task, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var t domain.Task
		if err := json.Unmarshal(raws[i], &t); err != nil {
			return nil, fmt.Errorf("%w: queued payload corrupt: %v", domain.ErrInvariantViolation, err)
		}
		t.Normalize()
		out = append(out, t)
	}
	return out, nil
}
