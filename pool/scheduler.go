package pool

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// scheduler is the cooperative background scheduler spec section 5 talks
// about: it hosts all database I/O, bounded to MaxClients concurrent
// tasks. Open sizes its client-slot semaphore once, via init, and Close
// drains it (not cancelled mid-task - see spec section 5 on cancellation).
type scheduler struct {
	log *logrus.Entry

	once sync.Once
	sem  chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newScheduler(log *logrus.Entry) *scheduler {
	return &scheduler{log: log}
}

func (s *scheduler) init(maxClients int) {
	s.once.Do(func() {
		s.sem = make(chan struct{}, maxClients)
	})
}

// Go runs fn on the scheduler, blocking the caller only long enough to
// acquire a client slot (or until ctx is cancelled), then returning
// immediately; fn itself runs on a new goroutine. Submit uses this so that
// Submit itself never blocks on query execution, only (briefly) on slot
// acquisition, per spec section 5.
func (s *scheduler) Go(ctx context.Context, fn func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return context.Canceled
	}
	s.wg.Add(1)
	s.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		s.wg.Done()
		return ctx.Err()
	}

	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		fn()
	}()
	return nil
}

// Close marks the scheduler closed to new work and waits for in-flight
// tasks to finish, honoring ctx for the wait itself (not for cancelling
// the tasks - spec section 5 is explicit that in-flight queries run to
// completion even when their ResultSet is dropped).
func (s *scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
