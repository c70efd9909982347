package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Adi21032004/Modified-Youtube/internal/catalog"
	"github.com/Adi21032004/Modified-Youtube/internal/config"
	"github.com/Adi21032004/Modified-Youtube/internal/db"
	"github.com/Adi21032004/Modified-Youtube/internal/media"
	"github.com/Adi21032004/Modified-Youtube/internal/repositories"
	"github.com/Adi21032004/Modified-Youtube/internal/storage"
)

// Services bundles the two catalog services plus the background cleanup
// reconciler they feed.
type Services struct {
	Videos        *catalog.VideoService
	Subscriptions *catalog.SubscriptionService

	reconciler *media.Reconciler
}

// BuildServices wires concrete implementations into the catalog services.
// Without a configured media bucket the services come up read-only for
// media: feed and record reads work, blob uploads and deletions fail.
func BuildServices(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (*Services, error) {
	var (
		store      media.Store
		reconciler *media.Reconciler
		cleanup    catalog.CleanupQueue
	)
	if strings.TrimSpace(cfg.ObjectStore.Bucket) != "" {
		s3store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		store = s3store
		reconciler = media.NewReconciler(s3store, media.ReconcilerConfig{
			QueueSize:    cfg.Cleanup.QueueSize,
			Workers:      cfg.Cleanup.Workers,
			AttemptDelay: cfg.Cleanup.AttemptDelay,
		}, logger)
		cleanup = reconciler
	} else {
		logger.Warn("media bucket not configured, media operations disabled")
	}

	videos := catalog.NewVideoService(
		repositories.NewPostgresVideoRepository(pool),
		repositories.NewPostgresAccountRepository(pool),
		store,
		cleanup,
	)

	subscriptions := catalog.NewSubscriptionService(
		repositories.NewPostgresSubscriptionRepository(pool),
	)

	return &Services{
		Videos:        videos,
		Subscriptions: subscriptions,
		reconciler:    reconciler,
	}, nil
}

// Shutdown drains the cleanup reconciler.
func (s *Services) Shutdown(ctx context.Context) error {
	if s == nil || s.reconciler == nil {
		return nil
	}
	return s.reconciler.Shutdown(ctx)
}
