package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"

	"github.com/Adi21032004/Modified-Youtube/internal/config"
	"github.com/Adi21032004/Modified-Youtube/internal/media"
)

// kindPrefixes maps asset kinds to bucket key prefixes. Public identifiers
// are derived from locators without the prefix, so Delete re-applies it.
var kindPrefixes = map[media.Kind]string{
	media.KindVideo: "videos",
	media.KindImage: "images",
}

// S3Storage implements media.Store backed by an S3-compatible service.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	limiter  *rate.Limiter
	bucket   string
	baseURL  string
}

// NewS3Storage configures a client targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &S3Storage{
		client:   client,
		uploader: uploader,
		limiter:  limiter,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Save uploads the provided content under the kind's key prefix and returns
// a public locator.
func (s *S3Storage) Save(ctx context.Context, kind media.Kind, name string, r io.Reader) (string, error) {
	prefix, ok := kindPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("s3 storage: unknown asset kind %q", kind)
	}

	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", fmt.Errorf("s3 storage: empty key")
	}
	key := fmt.Sprintf("%s/%s", prefix, name)

	if err := s.wait(ctx); err != nil {
		return "", err
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	if s.baseURL == "" {
		return key, nil
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete removes the blob identified by the given public identifier. Public
// identifiers carry no file extension, so objects are resolved by key prefix
// before removal. Deleting an identifier with no matching objects succeeds.
func (s *S3Storage) Delete(ctx context.Context, publicID string, kind media.Kind) error {
	prefix, ok := kindPrefixes[kind]
	if !ok {
		return fmt.Errorf("s3 storage: unknown asset kind %q", kind)
	}

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("s3 storage: empty public id")
	}
	keyPrefix := fmt.Sprintf("%s/%s", prefix, publicID)

	if err := s.wait(ctx); err != nil {
		return err
	}

	listed, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return fmt.Errorf("s3 storage list %s: %w", keyPrefix, err)
	}

	for _, object := range listed.Contents {
		if object.Key == nil {
			continue
		}
		if err := s.wait(ctx); err != nil {
			return err
		}
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    object.Key,
		}); err != nil {
			return fmt.Errorf("s3 storage delete %s: %w", *object.Key, err)
		}
	}

	return nil
}

func (s *S3Storage) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("s3 storage throttle: %w", err)
	}
	return nil
}

var _ media.Store = (*S3Storage)(nil)
