package calyx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMicrotaskFlushDrainsRequeues(t *testing.T) {
	s := NewStepScheduler()

	var order []string
	s.QueueMicrotask(func() {
		order = append(order, "first")
		s.QueueMicrotask(func() { order = append(order, "nested") })
	})
	s.QueueMicrotask(func() { order = append(order, "second") })

	s.FlushMicrotasks()
	assert.Equal(t, []string{"first", "second", "nested"}, order)

	micro, _ := s.Pending()
	assert.Zero(t, micro)
}

func TestMicrotaskCancel(t *testing.T) {
	s := NewStepScheduler()

	var ran bool
	cancel := s.QueueMicrotask(func() { ran = true })
	cancel()
	cancel() // idempotent

	s.FlushMicrotasks()
	assert.False(t, ran)
}

func TestFrameRunsCurrentBatchOnly(t *testing.T) {
	s := NewStepScheduler()

	var order []string
	s.NextFrame(func() {
		order = append(order, "frame 1")
		s.NextFrame(func() { order = append(order, "frame 2") })
	})

	s.Frame()
	assert.Equal(t, []string{"frame 1"}, order)

	s.Frame()
	assert.Equal(t, []string{"frame 1", "frame 2"}, order)
}

func TestFrameCancel(t *testing.T) {
	s := NewStepScheduler()

	var ran bool
	cancel := s.NextFrame(func() { ran = true })
	cancel()

	s.Frame()
	assert.False(t, ran)
}
