package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Adi21032004/Modified-Youtube/internal/models"
)

// VideoRepository exposes data access for catalog video records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, id string, fields VideoUpdateFields) (models.Video, error)
	TogglePublished(ctx context.Context, id string, updatedAt time.Time) (models.Video, error)
	Delete(ctx context.Context, id string) error
	ListFeed(ctx context.Context, query FeedQuery) ([]models.VideoSummary, error)
}

// VideoUpdateFields carries the optional mutations applied by UpdateDetails.
// Nil fields are left untouched; the whole set is swapped in one statement.
type VideoUpdateFields struct {
	Title       *string
	Description *string
	Thumbnail   *string
	UpdatedAt   time.Time
}

// FeedQuery compiles the feed parameters into a single read pipeline:
// published-only filter, owner join, sort, skip and limit.
type FeedQuery struct {
	Page     int
	Limit    int
	SortBy   string
	SortType string
	// OwnerID, when set, restricts results to that owner's videos.
	OwnerID string
}

const (
	defaultFeedPage  = 1
	defaultFeedLimit = 4
)

// feedSortColumns whitelists the sortable fields. Anything else falls back
// to the default ordering so an unknown name never reaches SQL.
var feedSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"duration":  "duration",
}

func (q FeedQuery) limitValue() int {
	if q.Limit < 1 {
		return defaultFeedLimit
	}
	return q.Limit
}

// offsetValue clamps to zero so an out-of-range page never produces a
// negative skip.
func (q FeedQuery) offsetValue() int {
	page := q.Page
	if page < defaultFeedPage {
		page = defaultFeedPage
	}
	return (page - 1) * q.limitValue()
}

func (q FeedQuery) orderClause() string {
	column, ok := feedSortColumns[q.SortBy]
	if !ok {
		return "ORDER BY v.created_at DESC"
	}
	direction := "DESC"
	if q.SortType == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY v.%s %s", column, direction)
}
