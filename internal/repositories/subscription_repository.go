package repositories

import (
	"context"

	"github.com/Adi21032004/Modified-Youtube/internal/models"
)

// SubscriptionRepository defines data access for subscription edges.
// Insert reports a violation of the store's uniqueness constraint over
// (channel_id, subscriber_id) as ErrConflict.
type SubscriptionRepository interface {
	Insert(ctx context.Context, subscription models.Subscription) (models.Subscription, error)
	FindByPair(ctx context.Context, channelID, subscriberID string) (models.Subscription, error)
	DeleteByPair(ctx context.Context, channelID, subscriberID string) error
	ListSubscribers(ctx context.Context, channelID string) ([]models.AccountProfile, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.AccountProfile, error)
}
