package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunOnceSkipsOverlappingRun(t *testing.T) {
	ctx := context.Background()
	locker := lock.NewLocal()
	s := NewScheduler(locker, zap.NewNop())

	var runs atomic.Int32
	inner := Job{Name: "reminders", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	outer := Job{Name: "reminders", Run: func(ctx context.Context) error {
		runs.Add(1)
		// Пока задача выполняется, второй запуск должен быть пропущен
		assert.False(t, s.RunOnce(ctx, inner))
		return nil
	}}

	assert.True(t, s.RunOnce(ctx, outer))
	assert.Equal(t, int32(1), runs.Load())

	assert.True(t, s.RunOnce(ctx, inner), "lock is released after the run")
	assert.Equal(t, int32(2), runs.Load())
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	s := NewScheduler(lock.NewLocal(), zap.NewNop(), Job{
		Name:     "dispatch",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}
