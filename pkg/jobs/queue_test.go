package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTasks(t *testing.T) {
	q := NewQueue("test", Options{Workers: 2})
	defer q.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.Enqueue(Task{Name: "one", Run: func(context.Context) error {
		ran.Add(1)
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	assert.Equal(t, int32(1), ran.Load())
}

func TestQueueRetriesFailedTask(t *testing.T) {
	q := NewQueue("test", Options{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	defer q.Stop()

	var attempts atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.Enqueue(Task{Name: "flaky", Run: func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried to completion")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue("test", Options{Workers: 1})
	q.Stop()

	err := q.Enqueue(Task{Name: "late", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}
