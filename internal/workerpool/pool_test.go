package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitAndClose(t *testing.T) {
	p := New(2, 10, nil)
	var count atomic.Int32

	for i := 0; i < 5; i++ {
		if err := p.Submit(context.Background(), func() {
			count.Add(1)
		}); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Close(ctx)

	if got := count.Load(); got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
}

func TestSubmitAfterCloseFails(t *testing.T) {
	p := New(1, 1, nil)
	p.Close(context.Background())

	if err := p.Submit(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Submit after Close = %v, want ErrClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(2, 2, nil)
	p.Close(context.Background())
	p.Close(context.Background())
}

func TestSubmitBlocksUntilContextDone(t *testing.T) {
	p := New(1, 1, nil)
	blocker := make(chan struct{})
	if err := p.Submit(context.Background(), func() { <-blocker }); err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond) // let worker pick up first task
	if err := p.Submit(context.Background(), func() {}); err != nil {
		t.Fatal(err) // fills the queue (size 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.Submit(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Submit on full queue = %v, want DeadlineExceeded", err)
	}

	close(blocker)
	p.Close(context.Background())
}

func TestCloseRespectsContextDeadline(t *testing.T) {
	p := New(1, 10, nil)
	blocker := make(chan struct{})
	_ = p.Submit(context.Background(), func() { <-blocker })

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	p.Close(ctx)

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Close should have timed out in ~100ms, took %v", elapsed)
	}

	close(blocker) // cleanup
}

func TestSingleWorkerDrains(t *testing.T) {
	p := New(1, 10, nil)
	var count atomic.Int32

	for i := 0; i < 5; i++ {
		_ = p.Submit(context.Background(), func() {
			time.Sleep(1 * time.Millisecond)
			count.Add(1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Close(ctx)

	if got := count.Load(); got != 5 {
		t.Fatalf("single-worker drain: count = %d, want 5", got)
	}
}

func TestPanicRecovery(t *testing.T) {
	p := New(1, 10, nil)
	var count atomic.Int32

	_ = p.Submit(context.Background(), func() {
		panic("test panic")
	})
	_ = p.Submit(context.Background(), func() {
		count.Add(1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Close(ctx)

	if got := count.Load(); got != 1 {
		t.Fatalf("task after panic: count = %d, want 1", got)
	}
}
