package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adi21032004/Modified-Youtube/internal/models"
	"github.com/Adi21032004/Modified-Youtube/internal/repositories"
)

const (
	channelID    = "11111111-1111-1111-1111-111111111111"
	subscriberID = "22222222-2222-2222-2222-222222222222"
)

type subscriptionRepoStub struct {
	existing  *models.Subscription
	findErr   error
	insertErr error
	deleteErr error

	inserted    *models.Subscription
	insertCalls int
	deleteCalls int
}

func (s *subscriptionRepoStub) Insert(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return models.Subscription{}, s.insertErr
	}
	s.inserted = &sub
	return sub, nil
}

func (s *subscriptionRepoStub) FindByPair(ctx context.Context, channel, subscriber string) (models.Subscription, error) {
	if s.findErr != nil {
		return models.Subscription{}, s.findErr
	}
	if s.existing != nil {
		return *s.existing, nil
	}
	return models.Subscription{}, repositories.ErrNotFound
}

func (s *subscriptionRepoStub) DeleteByPair(ctx context.Context, channel, subscriber string) error {
	s.deleteCalls++
	return s.deleteErr
}

func (s *subscriptionRepoStub) ListSubscribers(ctx context.Context, channel string) ([]models.AccountProfile, error) {
	return nil, nil
}

func (s *subscriptionRepoStub) ListSubscribedChannels(ctx context.Context, subscriber string) ([]models.AccountProfile, error) {
	return nil, nil
}

func newTestSubscriptionService(repo *subscriptionRepoStub) *SubscriptionService {
	svc := NewSubscriptionService(repo)
	svc.NowFunc = func() time.Time {
		return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	svc.NewID = func() string { return "fixed-id" }
	return svc
}

func TestSubscriptionToggleCreatesWhenAbsent(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestSubscriptionService(repo)

	result, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if result.Removed {
		t.Fatal("expected a created edge, not a removal")
	}
	if result.Subscription == nil || result.Subscription.ChannelID != channelID || result.Subscription.SubscriberID != subscriberID {
		t.Fatalf("unexpected edge: %+v", result.Subscription)
	}
	if repo.deleteCalls != 0 {
		t.Fatal("nothing existed to delete")
	}
}

func TestSubscriptionToggleRemovesWhenPresent(t *testing.T) {
	repo := &subscriptionRepoStub{
		existing: &models.Subscription{ID: "edge-1", ChannelID: channelID, SubscriberID: subscriberID},
	}
	svc := newTestSubscriptionService(repo)

	result, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if !result.Removed {
		t.Fatal("expected the existing edge to be removed")
	}
	if repo.insertCalls != 0 {
		t.Fatal("no insert may happen when the edge exists")
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one delete, got %d", repo.deleteCalls)
	}
}

func TestSubscriptionToggleAbsorbsInsertConflict(t *testing.T) {
	repo := &subscriptionRepoStub{insertErr: repositories.ErrConflict}
	svc := newTestSubscriptionService(repo)

	result, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("a losing insert race must complete as a removal: %v", err)
	}

	if !result.Removed {
		t.Fatal("expected the conflicting edge to be removed")
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one delete after the conflict, got %d", repo.deleteCalls)
	}
}

func TestSubscriptionToggleToleratesConcurrentRemoval(t *testing.T) {
	repo := &subscriptionRepoStub{
		existing:  &models.Subscription{ID: "edge-1", ChannelID: channelID, SubscriberID: subscriberID},
		deleteErr: repositories.ErrNotFound,
	}
	svc := newTestSubscriptionService(repo)

	result, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("an already-removed edge must not fail the toggle: %v", err)
	}
	if !result.Removed {
		t.Fatal("expected a removal outcome")
	}
}

func TestSubscriptionToggleRoundTrip(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestSubscriptionService(repo)

	created, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if created.Subscription == nil {
		t.Fatal("first toggle must create the edge")
	}

	repo.existing = repo.inserted
	removed, err := svc.Toggle(context.Background(), channelID, subscriberID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !removed.Removed {
		t.Fatal("second toggle must remove the edge")
	}
}

func TestSubscriptionToggleRejectsMalformedIDs(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestSubscriptionService(repo)

	cases := []struct {
		name       string
		channel    string
		subscriber string
	}{
		{name: "bad channel", channel: "not-a-uuid", subscriber: subscriberID},
		{name: "bad subscriber", channel: channelID, subscriber: "not-a-uuid"},
		{name: "both empty", channel: "", subscriber: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Toggle(context.Background(), tc.channel, tc.subscriber)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation failure, got %v", err)
			}
		})
	}

	if repo.insertCalls != 0 || repo.deleteCalls != 0 {
		t.Fatal("malformed ids must not reach the repository")
	}
}

func TestSubscriptionListingsRejectMalformedIDs(t *testing.T) {
	svc := newTestSubscriptionService(&subscriptionRepoStub{})

	if _, err := svc.ListSubscribers(context.Background(), "nope"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if _, err := svc.ListSubscribedChannels(context.Background(), "nope"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}
