package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Adi21032004/Modified-Youtube/internal/logging"
	"github.com/Adi21032004/Modified-Youtube/internal/models"
	"github.com/Adi21032004/Modified-Youtube/internal/repositories"
)

// SubscriptionService is the relationship toggle engine plus the two
// subscription listings. The toggle's correctness rests on the store's
// uniqueness constraint over (channel, subscriber): a concurrent insert
// that loses the race surfaces as a conflict here and is absorbed by
// retrying as a delete.
type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository

	NowFunc func() time.Time
	NewID   func() string
}

// NewSubscriptionService wires a subscription service from its repository.
func NewSubscriptionService(subscriptions repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		NowFunc:       func() time.Time { return time.Now().UTC() },
		NewID:         uuid.NewString,
	}
}

// ToggleResult reports the state transition performed by a toggle: either
// the edge was removed, or Subscription holds the newly created edge.
type ToggleResult struct {
	Removed      bool
	Subscription *models.Subscription
}

// Toggle creates the subscription edge when absent and removes it when
// present. After it returns, exactly zero or one edge exists for the pair.
func (s *SubscriptionService) Toggle(ctx context.Context, channelID, subscriberID string) (ToggleResult, error) {
	ctx, span := logging.StartSpan(ctx, "subscription.toggle")
	defer span.End()

	if _, err := uuid.Parse(channelID); err != nil {
		return ToggleResult{}, validationFailure("invalid channel id")
	}
	if _, err := uuid.Parse(subscriberID); err != nil {
		return ToggleResult{}, validationFailure("invalid subscriber id")
	}

	_, err := s.subscriptions.FindByPair(ctx, channelID, subscriberID)
	switch {
	case err == nil:
		if err := s.removeEdge(ctx, channelID, subscriberID); err != nil {
			return ToggleResult{}, err
		}
		logging.FromContext(ctx).Info("subscription removed", "channelId", channelID, "subscriberId", subscriberID)
		return ToggleResult{Removed: true}, nil
	case errors.Is(err, repositories.ErrNotFound):
		// Fall through to creation.
	default:
		return ToggleResult{}, storageFailure("check subscription", err)
	}

	created, err := s.subscriptions.Insert(ctx, models.Subscription{
		ID:           s.NewID(),
		ChannelID:    channelID,
		SubscriberID: subscriberID,
		CreatedAt:    s.NowFunc(),
	})
	switch {
	case err == nil:
		logging.FromContext(ctx).Info("subscription created", "channelId", channelID, "subscriberId", subscriberID)
		return ToggleResult{Subscription: &created}, nil
	case errors.Is(err, repositories.ErrConflict):
		// A concurrent toggle inserted first; its edge is authoritative, so
		// this call completes the pair's round trip by removing it.
		if err := s.removeEdge(ctx, channelID, subscriberID); err != nil {
			return ToggleResult{}, err
		}
		logging.FromContext(ctx).Info("subscription removed after conflicting insert", "channelId", channelID, "subscriberId", subscriberID)
		return ToggleResult{Removed: true}, nil
	default:
		return ToggleResult{}, storageFailure("create subscription", err)
	}
}

// removeEdge deletes the pair's edge, tolerating a concurrent removal.
func (s *SubscriptionService) removeEdge(ctx context.Context, channelID, subscriberID string) error {
	err := s.subscriptions.DeleteByPair(ctx, channelID, subscriberID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return storageFailure("remove subscription", err)
	}
	return nil
}

// ListSubscribers returns the accounts subscribed to the given channel.
func (s *SubscriptionService) ListSubscribers(ctx context.Context, channelID string) ([]models.AccountProfile, error) {
	if _, err := uuid.Parse(channelID); err != nil {
		return nil, validationFailure("invalid channel id")
	}

	subscribers, err := s.subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, storageFailure("list subscribers", err)
	}
	return subscribers, nil
}

// ListSubscribedChannels returns the channels the given account follows.
func (s *SubscriptionService) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.AccountProfile, error) {
	if _, err := uuid.Parse(subscriberID); err != nil {
		return nil, validationFailure("invalid subscriber id")
	}

	channels, err := s.subscriptions.ListSubscribedChannels(ctx, subscriberID)
	if err != nil {
		return nil, storageFailure("list subscribed channels", err)
	}
	return channels, nil
}
