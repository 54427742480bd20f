package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"stylegen/internal/domain"
)

var errS3Disabled = errors.New("s3 storage is not configured; set S3_BUCKET and credentials")

// S3Options configures an S3 compatible bucket.
type S3Options struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKeyID  string
	SecretKey    string
	UsePathStyle bool
	// Prefix is prepended to every key.
	Prefix string
}

// S3Store persists images in an S3 compatible bucket.
type S3Store struct {
	bucket   string
	prefix   string
	client   *s3.Client
	log      zerolog.Logger
	disabled bool
}

// NewS3Store builds a store for the bucket. Missing bucket or credentials
// produce a disabled store whose operations fail until configured.
func NewS3Store(ctx context.Context, opts S3Options, log zerolog.Logger) (*S3Store, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	store := &S3Store{
		bucket: strings.TrimSpace(opts.Bucket),
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		log:    logger,
	}

	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretKey)
	if store.bucket == "" || accessKey == "" || secretKey == "" {
		logger.Warn().Msg("S3_BUCKET or credentials are not set; storage is disabled until configured")
		store.disabled = true
		return store, nil
	}

	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, options ...interface{}) (aws.Endpoint, error) {
		if endpoint != "" {
			return aws.Endpoint{
				URL:           endpoint,
				PartitionID:   "aws",
				SigningRegion: region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})
	return store, nil
}

// Disabled reports whether the store lacks bucket configuration.
func (s *S3Store) Disabled() bool {
	return s == nil || s.disabled
}

func (s *S3Store) ensureEnabled() error {
	if s.Disabled() {
		return errS3Disabled
	}
	return nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Store) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := s.ensureEnabled(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(cleanKey)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("storage: put object: %w", err)
	}
	s.log.Debug().Str("key", cleanKey).Int("bytes", len(data)).Msg("object stored")
	return cleanKey, nil
}

func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(cleanKey)),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("storage: %s: %w", cleanKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: get object: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read object: %w", err)
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	cleanPrefix, err := sanitizeKey(prefix)
	if err != nil {
		return nil, err
	}
	listPrefix := s.objectKey(cleanPrefix) + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})
	objects := []Object{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: list objects: %w", err)
		}
		for _, item := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(item.Key), listPrefix)
			if name == "" {
				continue
			}
			obj := Object{Key: path.Join(cleanPrefix, name), Size: aws.ToInt64(item.Size)}
			if item.LastModified != nil {
				obj.Modified = *item.LastModified
			}
			objects = append(objects, obj)
		}
	}
	sortNewestFirst(objects)
	return objects, nil
}

// Health performs a HeadBucket request.
func (s *S3Store) Health(ctx context.Context) error {
	if s.Disabled() {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

var _ Store = (*S3Store)(nil)
