package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 8, time.Second, nil)
	p.Start()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if !p.Submit("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	p.Stop()

	if ran.Load() != 5 {
		t.Fatalf("expected 5 tasks to run, got %d", ran.Load())
	}
	if got := p.Stats().Completed; got != 5 {
		t.Fatalf("expected 5 completed, got %d", got)
	}
}

func TestPool_CountsFailuresAndPanics(t *testing.T) {
	p := NewPool(1, 4, time.Second, nil)
	p.Start()

	p.Submit("fails", func(ctx context.Context) error { return errors.New("db down") })
	p.Submit("panics", func(ctx context.Context) error { panic("boom") })
	p.Submit("ok", func(ctx context.Context) error { return nil })
	p.Stop()

	stats := p.Stats()
	if stats.Failed != 2 || stats.Completed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPool_DropsWhenQueueFull(t *testing.T) {
	p := NewPool(1, 1, time.Second, nil)

	if !p.Submit("first", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected first submit to be queued")
	}
	if p.Submit("second", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected second submit to be dropped")
	}
	p.Stop()

	stats := p.Stats()
	if stats.Dropped != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPool_RejectsAfterStop(t *testing.T) {
	p := NewPool(1, 1, time.Second, nil)
	p.Start()
	p.Stop()
	p.Stop()

	if p.Submit("late", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected submit after stop to be rejected")
	}
}

func TestPool_TaskTimeout(t *testing.T) {
	p := NewPool(1, 1, 10*time.Millisecond, nil)
	p.Start()

	p.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p.Stop()

	if p.Stats().Failed != 1 {
		t.Fatalf("expected timed out task to count as failed, got %+v", p.Stats())
	}
}
