package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playnest/playnest-backend/internal/logger"
)

func nopLogger() *logger.Logger { return logger.Nop() }

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	r := NewRunner(nopLogger(), 2, 8, 0)

	var ran int64
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := r.Submit("count", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt64(&ran, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	r.Close()

	if got := atomic.LoadInt64(&ran); got != 5 {
		t.Fatalf("ran = %d, want 5", got)
	}
}

func TestRunnerTaskErrorDoesNotStopWorkers(t *testing.T) {
	r := NewRunner(nopLogger(), 1, 4, 0)

	done := make(chan struct{})
	if err := r.Submit("boom", func(ctx context.Context) error {
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("Submit boom: %v", err)
	}
	if err := r.Submit("after", func(ctx context.Context) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Submit after: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task after a failed one never ran")
	}
	r.Close()
}

func TestRunnerRejectsWhenQueueFull(t *testing.T) {
	r := NewRunner(nopLogger(), 1, 1, 0)
	defer r.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := r.Submit("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started

	// Fill the single queue slot, then the next submit must fail fast.
	fill := func(ctx context.Context) error { return nil }
	if err := r.Submit("fill", fill); err != nil {
		t.Fatalf("Submit fill: %v", err)
	}
	if err := r.Submit("overflow", fill); err == nil {
		t.Fatal("expected queue-full error")
	}
	close(release)
}

func TestRunnerRejectsAfterClose(t *testing.T) {
	r := NewRunner(nopLogger(), 1, 1, 0)
	r.Close()
	if err := r.Submit("late", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected shutdown error")
	}
}

func TestRunnerCloseDrainsQueue(t *testing.T) {
	r := NewRunner(nopLogger(), 1, 8, 0)

	var ran int64
	release := make(chan struct{})
	started := make(chan struct{})
	if err := r.Submit("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		atomic.AddInt64(&ran, 1)
		return nil
	}); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started
	for i := 0; i < 3; i++ {
		if err := r.Submit("queued", func(ctx context.Context) error {
			atomic.AddInt64(&ran, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit queued: %v", err)
		}
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	r.Close()

	if got := atomic.LoadInt64(&ran); got != 4 {
		t.Fatalf("ran = %d, want 4", got)
	}
}
