package calyx

import "sync"

// CancelFunc cancels a piece of deferred work. Calling it after the work
// has run is a no-op. It is safe to call more than once.
type CancelFunc func()

// Scheduler supplies the two deferral primitives the toolkit needs:
// a microtask queue (runs after the current synchronous pass settles)
// and an animation-frame queue (runs on the host's next paint tick).
// Hosts with a real frame loop provide their own implementation; the
// built-in StepScheduler is a manual pump driven by the host or by tests.
type Scheduler interface {
	// QueueMicrotask schedules fn to run on the next microtask flush.
	QueueMicrotask(fn func()) CancelFunc

	// NextFrame schedules fn to run on the next animation frame.
	NextFrame(fn func()) CancelFunc
}

type scheduledTask struct {
	fn       func()
	canceled bool
}

// StepScheduler queues work until the host explicitly pumps it.
// FlushMicrotasks drains the microtask queue (including tasks queued
// while draining, mirroring event-loop semantics); Frame runs the tasks
// scheduled for the next frame exactly once.
type StepScheduler struct {
	mu    sync.Mutex
	micro []*scheduledTask
	frame []*scheduledTask
}

// NewStepScheduler creates an empty manual scheduler.
func NewStepScheduler() *StepScheduler {
	return &StepScheduler{}
}

// QueueMicrotask implements Scheduler.
func (s *StepScheduler) QueueMicrotask(fn func()) CancelFunc {
	task := &scheduledTask{fn: fn}
	s.mu.Lock()
	s.micro = append(s.micro, task)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		task.canceled = true
		s.mu.Unlock()
	}
}

// NextFrame implements Scheduler.
func (s *StepScheduler) NextFrame(fn func()) CancelFunc {
	task := &scheduledTask{fn: fn}
	s.mu.Lock()
	s.frame = append(s.frame, task)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		task.canceled = true
		s.mu.Unlock()
	}
}

// FlushMicrotasks runs queued microtasks until the queue is empty.
// Tasks queued by running tasks are picked up in the same flush.
func (s *StepScheduler) FlushMicrotasks() {
	for {
		s.mu.Lock()
		if len(s.micro) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.micro[0]
		s.micro = s.micro[1:]
		canceled := task.canceled
		s.mu.Unlock()

		if !canceled {
			task.fn()
		}
	}
}

// Frame runs the tasks scheduled for the next animation frame. Tasks
// scheduled by running tasks wait for the following frame.
func (s *StepScheduler) Frame() {
	s.mu.Lock()
	due := s.frame
	s.frame = nil
	s.mu.Unlock()

	for _, task := range due {
		s.mu.Lock()
		canceled := task.canceled
		s.mu.Unlock()
		if !canceled {
			task.fn()
		}
	}
}

// Pending reports queued microtask and frame task counts. Used by hosts
// that want to idle when nothing is scheduled.
func (s *StepScheduler) Pending() (micro, frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.micro), len(s.frame)
}
