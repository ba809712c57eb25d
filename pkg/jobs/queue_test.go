package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct{ Receiver string }

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	done := make(chan struct{}, 3)
	q := New("notifications", func(ctx context.Context, job Job[note]) error {
		mu.Lock()
		seen = append(seen, job.Payload.Receiver)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Config{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"stu-1", "stu-2", "stu-3"} {
		require.NoError(t, q.Enqueue(Job[note]{ID: id, Payload: note{Receiver: id}}))
	}
	for i := 0; i < 3; i++ {
		waitFor(t, done, "jobs")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"stu-1", "stu-2", "stu-3"}, seen)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := New("notifications", func(ctx context.Context, job Job[note]) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Config{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[note]{ID: "n-1"}))
	waitFor(t, done, "retry")
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueDiscardsAfterLastRetry(t *testing.T) {
	discarded := make(chan struct{})
	var got Job[note]
	q := New("notifications", func(ctx context.Context, job Job[note]) error {
		panic("store exploded")
	}, Config{Workers: 1, MaxRetries: 1, RetryDelay: time.Millisecond})
	q.OnDiscard(func(job Job[note], err error) {
		got = job
		assert.ErrorContains(t, err, "panicked")
		close(discarded)
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[note]{ID: "n-1"}))
	waitFor(t, discarded, "discard")
	assert.Equal(t, 2, got.Attempt)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var handled int32
	release := make(chan struct{})
	q := New("notifications", func(ctx context.Context, job Job[note]) error {
		<-release
		atomic.AddInt32(&handled, 1)
		return nil
	}, Config{Workers: 1, BufferSize: 8})
	q.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job[note]{ID: "n"}))
	}
	close(release)
	q.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&handled))
	assert.Error(t, q.Enqueue(Job[note]{ID: "late"}))
}

func TestQueueBackoffDoublesAndCaps(t *testing.T) {
	q := New("n", func(context.Context, Job[note]) error { return nil }, Config{RetryDelay: 10 * time.Second})
	assert.Equal(t, 10*time.Second, q.backoff(1))
	assert.Equal(t, 20*time.Second, q.backoff(2))
	assert.Equal(t, maxBackoff, q.backoff(3))
	assert.Equal(t, maxBackoff, q.backoff(10))
}

func TestQueueEnqueueBeforeStartFails(t *testing.T) {
	q := New("notifications", func(context.Context, Job[note]) error { return nil }, Config{})
	require.Error(t, q.Enqueue(Job[note]{ID: "x"}))
}
