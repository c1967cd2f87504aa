package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noop(context.Context) {}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	var ran bool
	if !q.Enqueue(ctx, func(context.Context) { ran = true }) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	task := <-q.Dequeue(ctx)
	task(ctx)
	if !ran {
		t.Error("expected dequeued task to be the enqueued one")
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
	if !q.Enqueue(ctx, noop) || !q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_RejectsNilAndCancelled(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())

	if q.Enqueue(ctx, nil) {
		t.Error("expected nil task to be rejected")
	}

	cancel()
	if q.Enqueue(ctx, noop) {
		t.Error("expected enqueue with a cancelled context to fail")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numProducers := 10
	numTasks := 100

	var executed atomic.Int64
	var producers sync.WaitGroup
	for i := 0; i < numProducers; i++ {
		producers.Add(1)
		go func() {
			defer producers.Done()
			for j := 0; j < numTasks; j++ {
				for !q.Enqueue(ctx, func(context.Context) { executed.Add(1) }) {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for task := range q.Dequeue(ctx) {
			task(ctx)
		}
	}()

	producers.Wait()
	_ = q.Close()
	<-consumed

	if got := executed.Load(); got != int64(numProducers*numTasks) {
		t.Errorf("expected %d executed tasks, got %d", numProducers*numTasks, got)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to succeed")
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	if q.Enqueue(ctx, noop) {
		t.Error("expected enqueue to fail after closing")
	}

	// the buffered task is still delivered, then the channel closes
	taskChan := q.Dequeue(ctx)
	timeout := time.After(100 * time.Millisecond)
	for drained := false; !drained; {
		select {
		case _, ok := <-taskChan:
			drained = !ok
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
