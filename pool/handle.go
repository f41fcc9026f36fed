package pool

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

// AsyncResultHandle is a future-like handle over an in-flight query, per
// spec section 4.8: created when a query is submitted, consumed exactly
// once by Await. A second Await fails with HandleConsumed.
type AsyncResultHandle struct {
	startTime time.Time
	done      chan struct{}

	mu       sync.Mutex
	consumed bool
	batch    *columnbatch.Batch
	err      error
	duration time.Duration
}

func newHandle() *AsyncResultHandle {
	return &AsyncResultHandle{
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// NewResolvedHandle builds an AsyncResultHandle that is already resolved,
// for use by test fakes (internal/testutil.FakePool) that need to satisfy
// the Submit contract without a real scheduler.
func NewResolvedHandle(batch *columnbatch.Batch, err error) *AsyncResultHandle {
	h := newHandle()
	h.resolve(batch, err)
	return h
}

// resolve is called exactly once per handle: by the scheduler worker that
// ran this handle's query, by Submit when scheduling fails, or by
// NewResolvedHandle.
func (h *AsyncResultHandle) resolve(batch *columnbatch.Batch, err error) {
	h.mu.Lock()
	h.batch = batch
	h.err = err
	h.duration = time.Since(h.startTime)
	h.mu.Unlock()
	close(h.done)
}

// Await blocks the caller until the background task completes, per spec
// section 4.8. A second Await on the same handle fails with
// errs.HandleConsumed.
func (h *AsyncResultHandle) Await() (*columnbatch.Batch, error) {
	h.mu.Lock()
	if h.consumed {
		h.mu.Unlock()
		return nil, errs.New(errs.HandleConsumed, "AsyncResultHandle already awaited")
	}
	h.consumed = true
	h.mu.Unlock()

	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		var kinded *errs.Error
		if errors.As(h.err, &kinded) {
			return nil, kinded
		}
		return nil, errs.Wrap(errs.DatabaseError, h.err, "query failed")
	}
	return h.batch, nil
}

// Duration returns the time from submission to result availability. It is
// only meaningful after Await (or at least after the handle has resolved);
// it returns the time elapsed so far if called earlier.
func (h *AsyncResultHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.duration > 0 {
		return h.duration
	}
	return time.Since(h.startTime)
}

// StartTime returns when the handle was created.
func (h *AsyncResultHandle) StartTime() time.Time {
	return h.startTime
}
