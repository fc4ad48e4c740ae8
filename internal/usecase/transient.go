// Package usecase contains the control plane services: state persistence,
// queue handling, dispatch, validation routing, retry orchestration and the
// control loop that sequences them.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// transientSchedule is the fixed retry ladder for store I/O. After the last
// delay the operation is given up and the caller halts the loop.
var transientSchedule = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

// scheduleBackOff serves a fixed list of delays, then stops.
type scheduleBackOff struct {
	delays []time.Duration
	next   int
}

func (b *scheduleBackOff) NextBackOff() time.Duration {
	if b.next >= len(b.delays) {
		return backoff.Stop
	}
	d := b.delays[b.next]
	b.next++
	return d
}

func (b *scheduleBackOff) Reset() { b.next = 0 }

// storeErrTransient reports whether a store error is worth retrying.
// Sentinel lookups and context cancellation are not; everything else coming
// out of the store adapter is treated as a connectivity blip.
func storeErrTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrKeyNotFound),
		errors.Is(err, domain.ErrQueueEmpty),
		errors.Is(err, domain.ErrInvariantViolation),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// retryTransient runs op, retrying per transientSchedule while the failure
// looks transient. An exhausted schedule surfaces domain.ErrTransient so the
// loop can halt with the dedicated reason instead of a generic failure.
func retryTransient(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil || storeErrTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	bo := backoff.WithContext(&scheduleBackOff{delays: transientSchedule}, ctx)
	err := backoff.Retry(wrapped, bo)
	if err != nil && storeErrTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	return err
}
