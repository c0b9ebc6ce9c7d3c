package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingResetter struct {
	mu    sync.Mutex
	calls []time.Time
	next  []time.Time
	n     int64
	err   error
}

func (r *recordingResetter) ResetLapsedUsage(ctx context.Context, now, nextReset time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, now)
	r.next = append(r.next, nextReset)
	return r.n, r.err
}

func TestUsageResetScheduler_SweepUsesNextMonth(t *testing.T) {
	r := &recordingResetter{n: 3}
	s := NewUsageResetScheduler(r, nil)

	now := time.Date(2026, 12, 15, 8, 0, 0, 0, time.UTC)
	if got := s.sweep(context.Background(), now); got != 3 {
		t.Fatalf("expected 3 users reset, got %d", got)
	}
	want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if !r.next[0].Equal(want) {
		t.Fatalf("expected next reset %v, got %v", want, r.next[0])
	}
}

func TestUsageResetScheduler_SweepErrorIsSwallowed(t *testing.T) {
	s := NewUsageResetScheduler(&recordingResetter{err: errors.New("db down")}, nil)
	if got := s.sweep(context.Background(), time.Now()); got != 0 {
		t.Fatalf("expected 0 on error, got %d", got)
	}
}

func TestUsageResetScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	r := &recordingResetter{}
	s := NewUsageResetScheduler(r, nil)
	s.Start()
	s.Stop()
	s.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) != 1 {
		t.Fatalf("expected one startup sweep, got %d", len(r.calls))
	}
}

func TestUsageResetScheduler_NilStore(t *testing.T) {
	s := NewUsageResetScheduler(nil, nil)
	s.Start()
	s.Stop()
}
