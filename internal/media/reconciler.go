package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ReconcilerConfig controls the concurrency characteristics of the reconciler.
type ReconcilerConfig struct {
	QueueSize    int
	Workers      int
	AttemptDelay time.Duration
}

// Reconciler retries best-effort blob deletions in the background. Callers
// enqueue blobs whose inline cleanup failed; the primary operation has
// already succeeded by then, so the worst case here is an orphaned blob that
// gets logged for manual follow-up.
type Reconciler struct {
	store  Store
	logger *slog.Logger
	delay  time.Duration

	jobs   chan cleanupJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	// mu orders Enqueue sends before the channel close in Shutdown. Senders
	// hold the read lock across the send, so once the write lock is taken and
	// closed is set, no send can race the close.
	mu     sync.RWMutex
	closed bool
}

type cleanupJob struct {
	publicID string
	kind     Kind
}

var errReconcilerClosed = errors.New("media reconciler closed")

// NewReconciler constructs a background worker pool that retries blob deletions.
func NewReconciler(store Store, cfg ReconcilerConfig, logger *slog.Logger) *Reconciler {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.AttemptDelay <= 0 {
		cfg.AttemptDelay = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	rec := &Reconciler{
		store:  store,
		logger: logger,
		delay:  cfg.AttemptDelay,
		jobs:   make(chan cleanupJob, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	rec.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go rec.worker()
	}

	return rec
}

// Enqueue schedules a retry for the provided blob. It never blocks the
// caller beyond queue admission.
func (r *Reconciler) Enqueue(ctx context.Context, publicID string, kind Kind) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return errReconcilerClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.jobs <- cleanupJob{publicID: publicID, kind: kind}:
		return nil
	}
}

// Shutdown stops accepting new jobs and drains the queue: every job still
// buffered gets a deletion attempt with the retry delay skipped, or at least
// a reconciliation log entry. Returns early if ctx expires first.
func (r *Reconciler) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		// Skips pending attempt delays so draining is prompt.
		r.cancel()
		close(r.jobs)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Reconciler) worker() {
	defer r.wg.Done()

	for job := range r.jobs {
		r.handleJob(job)
	}
}

func (r *Reconciler) handleJob(job cleanupJob) {
	if r.store == nil {
		r.logger.Error("media reconciler missing store", "publicId", job.publicID)
		return
	}

	timer := time.NewTimer(r.delay)
	select {
	case <-r.ctx.Done():
		timer.Stop()
	case <-timer.C:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.store.Delete(ctx, job.publicID, job.kind); err != nil {
		r.logReconcileNeeded(job, err)
		return
	}

	r.logger.Info("orphaned blob removed", "publicId", job.publicID, "kind", string(job.kind))
}

func (r *Reconciler) logReconcileNeeded(job cleanupJob, err error) {
	r.logger.Error("blob cleanup retry failed, manual reconciliation required",
		"publicId", job.publicID,
		"kind", string(job.kind),
		"error", err,
	)
}
