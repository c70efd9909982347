package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type storeStub struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *storeStub) Save(ctx context.Context, kind Kind, name string, r io.Reader) (string, error) {
	return "", errors.New("not used")
}

func (s *storeStub) Delete(ctx context.Context, publicID string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, publicID)
	return nil
}

func (s *storeStub) deletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deleted)
}

func TestReconcilerDeletesEnqueuedBlob(t *testing.T) {
	store := &storeStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := NewReconciler(store, ReconcilerConfig{QueueSize: 1, Workers: 1, AttemptDelay: time.Millisecond}, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = rec.Shutdown(ctx)
	}()

	if err := rec.Enqueue(context.Background(), "abc123", KindImage); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCondition(t, func() bool { return store.deletedCount() > 0 }, time.Second)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.deleted[0] != "abc123" {
		t.Fatalf("unexpected deletion: %v", store.deleted)
	}
}

func TestReconcilerShutdownStopsWorkers(t *testing.T) {
	store := &storeStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := NewReconciler(store, ReconcilerConfig{QueueSize: 4, Workers: 2, AttemptDelay: time.Millisecond}, logger)

	for _, id := range []string{"one", "two", "three"} {
		if err := rec.Enqueue(context.Background(), id, KindVideo); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rec.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := rec.Enqueue(context.Background(), "late", KindVideo); !errors.Is(err, errReconcilerClosed) {
		t.Fatalf("expected closed reconciler to reject jobs, got %v", err)
	}
}

func TestReconcilerShutdownAttemptsQueuedJobs(t *testing.T) {
	store := &storeStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// The delay is far beyond the test horizon, so every attempt that
	// happens is one the shutdown drain forced through.
	rec := NewReconciler(store, ReconcilerConfig{QueueSize: 8, Workers: 2, AttemptDelay: time.Hour}, logger)

	ids := []string{"one", "two", "three", "four"}
	for _, id := range ids {
		if err := rec.Enqueue(context.Background(), id, KindVideo); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := store.deletedCount(); got != len(ids) {
		t.Fatalf("expected %d deletion attempts before shutdown returned, got %d", len(ids), got)
	}
}

func TestReconcilerEnqueueDuringShutdownDoesNotPanic(t *testing.T) {
	store := &storeStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := NewReconciler(store, ReconcilerConfig{QueueSize: 1024, Workers: 2, AttemptDelay: time.Millisecond}, logger)

	const spammers = 8
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < spammers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if err := rec.Enqueue(context.Background(), "blob", KindImage); errors.Is(err, errReconcilerClosed) {
					return
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	close(stop)
	wg.Wait()

	if err := rec.Enqueue(context.Background(), "late", KindImage); !errors.Is(err, errReconcilerClosed) {
		t.Fatalf("expected closed reconciler to reject jobs, got %v", err)
	}
}

func waitForCondition(t *testing.T, predicate func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
