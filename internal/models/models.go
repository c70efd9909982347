package models

import "time"

// Video is the catalog record for a single uploaded video. VideoFile and
// Thumbnail are opaque media locators resolvable by the media package; the
// owner never changes after creation.
type Video struct {
	ID          string
	OwnerID     string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Title       string
	Description string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subscription is a relationship edge: Subscriber follows Channel. At most
// one edge exists per (channel, subscriber) pair, enforced by a uniqueness
// constraint in the store.
type Subscription struct {
	ID           string
	ChannelID    string
	SubscriberID string
	CreatedAt    time.Time
}

// AccountProfile is the read-only projection of an account owned by the
// external identity subsystem.
type AccountProfile struct {
	ID         string
	UserName   string
	FullName   string
	Email      string
	Avatar     string
	CoverImage string
}

// OwnerDetails is the reduced owner projection embedded in feed results.
type OwnerDetails struct {
	UserName string
	Avatar   string
}

// VideoSummary is a feed row: the video together with its denormalized
// owner projection. Owner is nil when the referenced account is missing.
type VideoSummary struct {
	Video
	Owner *OwnerDetails
}
