package workers

import (
	"context"
	"fmt"
	"sync"

	"tradewizard_backend/internal/logger"
)

// Supervisor runs named background tasks. Unlike a bare `go` statement every
// task is counted, its completion and error are logged, and the whole set can
// be drained or cancelled on shutdown.
type Supervisor struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	active  map[string]int
	cancels map[int]context.CancelFunc
	nextID  int
}

func NewSupervisor() *Supervisor {
	return &Supervisor{
		active:  make(map[string]int),
		cancels: make(map[int]context.CancelFunc),
	}
}

// Go schedules fn under the given task name and returns immediately.
func (s *Supervisor) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	taskCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.active[name]++
	id := s.nextID
	s.nextID++
	s.cancels[id] = cancel
	s.mu.Unlock()
	s.wg.Add(1)

	logger.CtxInfo(taskCtx, "background task started", "task", name)

	go func() {
		defer s.wg.Done()
		defer func() {
			cancel()
			s.mu.Lock()
			s.active[name]--
			if s.active[name] <= 0 {
				delete(s.active, name)
			}
			delete(s.cancels, id)
			s.mu.Unlock()
		}()
		defer func() {
			if r := recover(); r != nil {
				logger.CtxError(taskCtx, "background task panicked", "task", name, "panic", fmt.Sprintf("%v", r))
			}
		}()

		if err := fn(taskCtx); err != nil {
			logger.CtxWithError(taskCtx, "background task finished with error", err, "task", name)
			return
		}
		logger.CtxInfo(taskCtx, "background task finished", "task", name)
	}()
}

// ActiveCount reports how many tasks are currently running.
func (s *Supervisor) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.active {
		count += n
	}
	return count
}

// Wait blocks until every scheduled task has finished on its own.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Shutdown cancels every running task and waits for them to exit. Safe to
// call more than once.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
