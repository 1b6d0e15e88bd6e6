package background

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunnerRunsTasksAndDrainsOnClose(t *testing.T) {
	r := NewRunner(Config{QueueSize: 16, Workers: 2, TaskTimeout: time.Second}, newTestLogger())

	var n int32
	for i := 0; i < 10; i++ {
		require.True(t, r.Submit("count", func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		}))
	}

	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, int32(10), atomic.LoadInt32(&n))
}

func TestRunnerSubmitNeverBlocksWhenFull(t *testing.T) {
	r := NewRunner(Config{QueueSize: 1, Workers: 1, TaskTimeout: time.Second}, newTestLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, r.Submit("block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.True(t, r.Submit("queued", func(ctx context.Context) error { return nil }))

	done := make(chan bool)
	go func() { done <- r.Submit("dropped", func(ctx context.Context) error { return nil }) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(release)
	require.NoError(t, r.Close(context.Background()))
}

func TestRunnerRejectsAfterClose(t *testing.T) {
	r := NewRunner(Config{QueueSize: 1, Workers: 1}, newTestLogger())
	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))

	assert.False(t, r.Submit("late", func(ctx context.Context) error { return nil }))
}

func TestRunnerSurvivesFailuresAndPanics(t *testing.T) {
	r := NewRunner(Config{QueueSize: 4, Workers: 1, TaskTimeout: time.Second}, newTestLogger())

	var ran int32
	r.Submit("fail", func(ctx context.Context) error { return errors.New("db down") })
	r.Submit("panic", func(ctx context.Context) error { panic("boom") })
	r.Submit("ok", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestRunnerAppliesTaskTimeout(t *testing.T) {
	r := NewRunner(Config{QueueSize: 1, Workers: 1, TaskTimeout: 20 * time.Millisecond}, newTestLogger())

	errc := make(chan error, 1)
	r.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errc <- ctx.Err()
		return ctx.Err()
	})

	require.NoError(t, r.Close(context.Background()))
	assert.ErrorIs(t, <-errc, context.DeadlineExceeded)
}

func TestRunnerCloseHonoursContext(t *testing.T) {
	r := NewRunner(Config{QueueSize: 1, Workers: 1, TaskTimeout: time.Minute}, newTestLogger())

	release := make(chan struct{})
	r.Submit("stuck", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
	close(release)
}
