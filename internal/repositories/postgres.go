package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Adi21032004/Modified-Youtube/internal/db"
	"github.com/Adi21032004/Modified-Youtube/internal/models"
)

const videoColumns = "id, owner_id, video_file, thumbnail, duration, title, description, is_published, created_at, updated_at"

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create persists a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_file, thumbnail, duration, title, description, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.VideoFile, video.Thumbnail, video.Duration, video.Title, video.Description, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video record by its identifier.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// UpdateDetails swaps the provided fields in a single atomic statement and
// returns the updated record. Nil fields keep their current value.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, id string, fields VideoUpdateFields) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET title = COALESCE($2::text, title),
            description = COALESCE($3::text, description),
            thumbnail = COALESCE($4::text, thumbnail),
            updated_at = $5
        WHERE id = $1
        RETURNING `+videoColumns+`
    `, id, fields.Title, fields.Description, fields.Thumbnail, fields.UpdatedAt)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}

	return video, nil
}

// TogglePublished flips the publish flag atomically and returns the updated record.
func (r *PostgresVideoRepository) TogglePublished(ctx context.Context, id string, updatedAt time.Time) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET is_published = NOT is_published,
            updated_at = $2
        WHERE id = $1
        RETURNING `+videoColumns+`
    `, id, updatedAt)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("toggle video publish flag: %w", err)
	}

	return video, nil
}

// Delete removes a video record.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListFeed runs the compiled feed pipeline: published-only filter, owner
// projection join, sort, skip and limit. A missing owner account yields a
// nil projection rather than failing the page.
func (r *PostgresVideoRepository) ListFeed(ctx context.Context, query FeedQuery) ([]models.VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := "WHERE v.is_published = TRUE"
	args := make([]any, 0, 3)
	if query.OwnerID != "" {
		args = append(args, query.OwnerID)
		where = fmt.Sprintf("%s AND v.owner_id = $%d", where, len(args))
	}
	args = append(args, query.limitValue(), query.offsetValue())

	stmt := fmt.Sprintf(`
        SELECT v.id, v.owner_id, v.video_file, v.thumbnail, v.duration, v.title, v.description, v.is_published, v.created_at, v.updated_at,
               a.id, a.user_name, a.avatar
        FROM videos v
        LEFT JOIN accounts a ON a.id = v.owner_id
        %s
        %s
        LIMIT $%d OFFSET $%d
    `, where, query.orderClause(), len(args)-1, len(args))

	rows, err := conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query video feed: %w", err)
	}
	defer rows.Close()

	var page []models.VideoSummary
	for rows.Next() {
		var (
			summary       models.VideoSummary
			ownerID       sql.NullString
			ownerUserName sql.NullString
			ownerAvatar   sql.NullString
		)

		if err := rows.Scan(
			&summary.ID, &summary.OwnerID, &summary.VideoFile, &summary.Thumbnail, &summary.Duration,
			&summary.Title, &summary.Description, &summary.IsPublished, &summary.CreatedAt, &summary.UpdatedAt,
			&ownerID, &ownerUserName, &ownerAvatar,
		); err != nil {
			return nil, fmt.Errorf("scan video feed row: %w", err)
		}

		if ownerID.Valid {
			summary.Owner = &models.OwnerDetails{
				UserName: ownerUserName.String,
				Avatar:   ownerAvatar.String,
			}
		}

		page = append(page, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video feed: %w", err)
	}

	return page, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.OwnerID, &video.VideoFile, &video.Thumbnail, &video.Duration,
		&video.Title, &video.Description, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt,
	)
	return video, err
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Insert persists a new subscription edge. A uniqueness violation on
// (channel_id, subscriber_id) surfaces as ErrConflict so the caller can
// treat a concurrent winner's insert as authoritative.
func (r *PostgresSubscriptionRepository) Insert(ctx context.Context, subscription models.Subscription) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO subscriptions (id, channel_id, subscriber_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, channel_id, subscriber_id, created_at
    `, subscription.ID, subscription.ChannelID, subscription.SubscriberID, subscription.CreatedAt)

	var created models.Subscription
	if err := row.Scan(&created.ID, &created.ChannelID, &created.SubscriberID, &created.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Subscription{}, ErrConflict
		}
		return models.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}

	return created, nil
}

// FindByPair fetches the subscription edge for a (channel, subscriber) pair.
func (r *PostgresSubscriptionRepository) FindByPair(ctx context.Context, channelID, subscriberID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, channel_id, subscriber_id, created_at
        FROM subscriptions
        WHERE channel_id = $1 AND subscriber_id = $2
    `, channelID, subscriberID)

	var subscription models.Subscription
	if err := row.Scan(&subscription.ID, &subscription.ChannelID, &subscription.SubscriberID, &subscription.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}

	return subscription, nil
}

// DeleteByPair removes the subscription edge for a (channel, subscriber) pair.
func (r *PostgresSubscriptionRepository) DeleteByPair(ctx context.Context, channelID, subscriberID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE channel_id = $1 AND subscriber_id = $2
    `, channelID, subscriberID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListSubscribers returns the account projections subscribed to a channel.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.AccountProfile, error) {
	return r.listProfiles(ctx, `
        SELECT a.id, a.user_name, a.full_name, a.email, a.avatar, a.cover_image
        FROM subscriptions s
        JOIN accounts a ON a.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// ListSubscribedChannels returns the channel projections a subscriber follows.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.AccountProfile, error) {
	return r.listProfiles(ctx, `
        SELECT a.id, a.user_name, a.full_name, a.email, a.avatar, a.cover_image
        FROM subscriptions s
        JOIN accounts a ON a.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listProfiles(ctx context.Context, stmt, id string) ([]models.AccountProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt, id)
	if err != nil {
		return nil, fmt.Errorf("query subscription profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.AccountProfile
	for rows.Next() {
		var profile models.AccountProfile
		if err := rows.Scan(&profile.ID, &profile.UserName, &profile.FullName, &profile.Email, &profile.Avatar, &profile.CoverImage); err != nil {
			return nil, fmt.Errorf("scan subscription profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription profiles: %w", err)
	}

	return profiles, nil
}

// PostgresAccountRepository reads account projections maintained by the
// identity subsystem.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// FindProfile fetches an account projection by its identifier.
func (r *PostgresAccountRepository) FindProfile(ctx context.Context, id string) (models.AccountProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.AccountProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_name, full_name, email, avatar, cover_image
        FROM accounts
        WHERE id = $1
    `, id)

	var profile models.AccountProfile
	if err := row.Scan(&profile.ID, &profile.UserName, &profile.FullName, &profile.Email, &profile.Avatar, &profile.CoverImage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccountProfile{}, ErrNotFound
		}
		return models.AccountProfile{}, fmt.Errorf("select account: %w", err)
	}

	return profile, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ AccountRepository = (*PostgresAccountRepository)(nil)
