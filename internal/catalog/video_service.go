package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adi21032004/Modified-Youtube/internal/logging"
	"github.com/Adi21032004/Modified-Youtube/internal/media"
	"github.com/Adi21032004/Modified-Youtube/internal/models"
	"github.com/Adi21032004/Modified-Youtube/internal/repositories"
)

// Placeholder locators set on creation; the real upload flow replaces them
// separately. The media store is never asked to delete a placeholder.
const (
	placeholderVideoFile = "pending://video"
	placeholderThumbnail = "pending://image"
)

// CleanupQueue schedules background retries for blob deletions whose inline
// attempt failed.
type CleanupQueue interface {
	Enqueue(ctx context.Context, publicID string, kind media.Kind) error
}

var errMediaUnconfigured = errors.New("media store not configured")

// VideoService orchestrates video record operations: ownership checks, feed
// reads and the media lifecycle around update and delete.
type VideoService struct {
	videos   repositories.VideoRepository
	accounts repositories.AccountRepository
	media    media.Store
	cleanup  CleanupQueue

	// NowFunc and NewID are overridable for tests.
	NowFunc func() time.Time
	NewID   func() string
}

// NewVideoService wires a video service from its collaborators. cleanup may
// be nil, in which case failed blob deletions are only logged. store may be
// nil for read-only wiring; media operations then fail with ErrStorage.
func NewVideoService(videos repositories.VideoRepository, accounts repositories.AccountRepository, store media.Store, cleanup CleanupQueue) *VideoService {
	return &VideoService{
		videos:   videos,
		accounts: accounts,
		media:    store,
		cleanup:  cleanup,
		NowFunc:  func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

// FeedInput carries the feed pagination and ordering parameters.
type FeedInput struct {
	Page     int
	Limit    int
	SortBy   string
	SortType string
	OwnerID  string
}

// ListFeed returns one page of published videos with denormalized owner
// projections. An empty page is a valid result, not a failure.
func (s *VideoService) ListFeed(ctx context.Context, input FeedInput) ([]models.VideoSummary, error) {
	ctx, span := logging.StartSpan(ctx, "video.feed")
	defer span.End()

	page, err := s.videos.ListFeed(ctx, repositories.FeedQuery{
		Page:     input.Page,
		Limit:    input.Limit,
		SortBy:   input.SortBy,
		SortType: input.SortType,
		OwnerID:  input.OwnerID,
	})
	if err != nil {
		return nil, storageFailure("list feed", err)
	}

	return page, nil
}

// CreateVideoInput carries the validated parameters for Create.
type CreateVideoInput struct {
	OwnerID     string
	Title       string
	Description string
}

// Create persists a new video record with placeholder media locators.
func (s *VideoService) Create(ctx context.Context, input CreateVideoInput) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "video.create")
	defer span.End()

	if strings.TrimSpace(input.OwnerID) == "" {
		return models.Video{}, validationFailure("owner id is required")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return models.Video{}, validationFailure("title and description must be provided")
	}

	now := s.NowFunc()
	video := models.Video{
		ID:          s.NewID(),
		OwnerID:     input.OwnerID,
		VideoFile:   placeholderVideoFile,
		Thumbnail:   placeholderThumbnail,
		Duration:    0,
		Title:       input.Title,
		Description: input.Description,
		IsPublished: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return models.Video{}, storageFailure("create video", err)
	}

	logging.FromContext(ctx).Info("video created", "videoId", video.ID, "ownerId", video.OwnerID)
	return video, nil
}

// VideoDetails is a video record together with its owner projection. Owner
// is nil when the referenced account no longer exists.
type VideoDetails struct {
	models.Video
	Owner *models.AccountProfile
}

// Get fetches a video and populates its owner projection.
func (s *VideoService) Get(ctx context.Context, videoID string) (VideoDetails, error) {
	if strings.TrimSpace(videoID) == "" {
		return VideoDetails{}, validationFailure("video id is required")
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return VideoDetails{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return VideoDetails{}, storageFailure("fetch video", err)
	}

	details := VideoDetails{Video: video}

	owner, err := s.accounts.FindProfile(ctx, video.OwnerID)
	switch {
	case err == nil:
		details.Owner = &owner
	case errors.Is(err, repositories.ErrNotFound):
		// Missing owner degrades to an empty projection, never a failure.
	default:
		return VideoDetails{}, storageFailure("fetch video owner", err)
	}

	return details, nil
}

// UpdateVideoInput carries the optional mutations for Update. Thumbnail,
// when set, is a new blob to upload; ThumbnailName is its object name and
// defaults to a fresh identifier.
type UpdateVideoInput struct {
	Title         *string
	Description   *string
	Thumbnail     io.Reader
	ThumbnailName string
}

// UpdateVideoResult reports a successful update. CleanupWarning is set when
// the best-effort deletion of the replaced thumbnail failed; the record
// itself is consistent and the new thumbnail is active.
type UpdateVideoResult struct {
	Video          models.Video
	CleanupWarning string
}

// Update applies metadata changes and, when a new thumbnail blob is
// supplied, runs the upload-swap-delete-old sequence in that order. The
// ownership check precedes every mutation and external call.
func (s *VideoService) Update(ctx context.Context, videoID, actingAccountID string, input UpdateVideoInput) (UpdateVideoResult, error) {
	ctx, span := logging.StartSpan(ctx, "video.update")
	defer span.End()

	if strings.TrimSpace(videoID) == "" {
		return UpdateVideoResult{}, validationFailure("video id is required")
	}
	if strings.TrimSpace(actingAccountID) == "" {
		return UpdateVideoResult{}, validationFailure("acting account id is required")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return UpdateVideoResult{}, validationFailure("title must not be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return UpdateVideoResult{}, validationFailure("description must not be empty")
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return UpdateVideoResult{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return UpdateVideoResult{}, storageFailure("fetch video", err)
	}

	if err := requireOwner(video, actingAccountID); err != nil {
		return UpdateVideoResult{}, err
	}

	fields := repositories.VideoUpdateFields{
		Title:       input.Title,
		Description: input.Description,
		UpdatedAt:   s.NowFunc(),
	}

	var oldThumbnail string
	if input.Thumbnail != nil {
		if s.media == nil {
			return UpdateVideoResult{}, storageFailure("upload thumbnail", errMediaUnconfigured)
		}

		name := strings.TrimSpace(input.ThumbnailName)
		if name == "" {
			name = s.NewID()
		}

		locator, err := s.media.Save(ctx, media.KindImage, name, input.Thumbnail)
		if err != nil {
			return UpdateVideoResult{}, storageFailure("upload thumbnail", err)
		}

		fields.Thumbnail = &locator
		oldThumbnail = video.Thumbnail
	}

	updated, err := s.videos.UpdateDetails(ctx, videoID, fields)
	if err != nil {
		if fields.Thumbnail != nil {
			// The record swap never happened; the fresh blob is orphaned.
			s.scheduleCleanup(ctx, media.PublicIDFromLocator(*fields.Thumbnail), media.KindImage)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return UpdateVideoResult{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return UpdateVideoResult{}, storageFailure("update video", err)
	}

	result := UpdateVideoResult{Video: updated}

	if fields.Thumbnail != nil && !isPlaceholder(oldThumbnail) {
		publicID := media.PublicIDFromLocator(oldThumbnail)
		if err := s.media.Delete(ctx, publicID, media.KindImage); err != nil {
			logging.FromContext(ctx).Warn("old thumbnail cleanup failed",
				"videoId", videoID, "publicId", publicID, "error", err)
			result.CleanupWarning = fmt.Sprintf("old thumbnail %s was not removed: %v", publicID, err)
			s.scheduleCleanup(ctx, publicID, media.KindImage)
		}
	}

	return result, nil
}

// TogglePublish flips the publish flag after verifying ownership.
func (s *VideoService) TogglePublish(ctx context.Context, videoID, actingAccountID string) (models.Video, error) {
	if strings.TrimSpace(videoID) == "" {
		return models.Video{}, validationFailure("video id is required")
	}
	if strings.TrimSpace(actingAccountID) == "" {
		return models.Video{}, validationFailure("acting account id is required")
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return models.Video{}, storageFailure("fetch video", err)
	}

	if err := requireOwner(video, actingAccountID); err != nil {
		return models.Video{}, err
	}

	updated, err := s.videos.TogglePublished(ctx, videoID, s.NowFunc())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return models.Video{}, storageFailure("toggle publish flag", err)
	}

	return updated, nil
}

// DeleteVideoResult reports the outcome of a delete: the removed record and
// whether each of its two blobs was deleted from the media store.
type DeleteVideoResult struct {
	Video            models.Video
	VideoFileRemoved bool
	ThumbnailRemoved bool
}

// Delete removes a video record and then its media blobs. Ownership is
// verified before anything is deleted; once the document is gone, blob
// failures surface as a storage failure without resurrecting the record.
func (s *VideoService) Delete(ctx context.Context, videoID, actingAccountID string) (DeleteVideoResult, error) {
	ctx, span := logging.StartSpan(ctx, "video.delete")
	defer span.End()

	if strings.TrimSpace(videoID) == "" {
		return DeleteVideoResult{}, validationFailure("video id is required")
	}
	if strings.TrimSpace(actingAccountID) == "" {
		return DeleteVideoResult{}, validationFailure("acting account id is required")
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return DeleteVideoResult{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return DeleteVideoResult{}, storageFailure("fetch video", err)
	}

	if err := requireOwner(video, actingAccountID); err != nil {
		return DeleteVideoResult{}, err
	}

	if err := s.videos.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return DeleteVideoResult{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return DeleteVideoResult{}, storageFailure("delete video record", err)
	}

	result := DeleteVideoResult{Video: video}

	var videoErr, thumbnailErr error
	var g errgroup.Group
	g.Go(func() error {
		videoErr = s.deleteBlob(ctx, video.VideoFile, media.KindVideo)
		return videoErr
	})
	g.Go(func() error {
		thumbnailErr = s.deleteBlob(ctx, video.Thumbnail, media.KindImage)
		return thumbnailErr
	})
	err = g.Wait()

	result.VideoFileRemoved = videoErr == nil
	result.ThumbnailRemoved = thumbnailErr == nil

	if err != nil {
		joined := errors.Join(videoErr, thumbnailErr)
		logging.FromContext(ctx).Error("video record deleted but blob cleanup incomplete",
			"videoId", videoID, "error", joined)
		return result, fmt.Errorf("delete video blobs: %w: %w", ErrStorage, joined)
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", videoID)
	return result, nil
}

// deleteBlob removes the blob behind a locator, queueing a background retry
// on failure. Placeholder locators have no blob and succeed immediately.
func (s *VideoService) deleteBlob(ctx context.Context, locator string, kind media.Kind) error {
	if isPlaceholder(locator) || strings.TrimSpace(locator) == "" {
		return nil
	}

	publicID := media.PublicIDFromLocator(locator)
	if s.media == nil {
		return fmt.Errorf("delete %s blob %s: %w", kind, publicID, errMediaUnconfigured)
	}
	if err := s.media.Delete(ctx, publicID, kind); err != nil {
		s.scheduleCleanup(ctx, publicID, kind)
		return fmt.Errorf("delete %s blob %s: %w", kind, publicID, err)
	}
	return nil
}

func (s *VideoService) scheduleCleanup(ctx context.Context, publicID string, kind media.Kind) {
	if s.cleanup == nil {
		return
	}
	if err := s.cleanup.Enqueue(ctx, publicID, kind); err != nil {
		logging.FromContext(ctx).Error("enqueue blob cleanup", "publicId", publicID, "error", err)
	}
}

func isPlaceholder(locator string) bool {
	return strings.HasPrefix(locator, "pending://")
}
