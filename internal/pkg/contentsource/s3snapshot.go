package contentsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/env"
)

// S3Config holds the snapshot bucket configuration.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // optional, for S3-compatible services
	Enabled         bool
}

// LoadS3Config reads the snapshot bucket configuration from the environment.
func LoadS3Config() (*S3Config, error) {
	cfg := &S3Config{
		AccessKeyID:     env.GetEnv("SNAPSHOT_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("SNAPSHOT_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("SNAPSHOT_S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("SNAPSHOT_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("SNAPSHOT_S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("SNAPSHOT_S3_ENABLED", "false") == "true",
	}

	if cfg.Enabled {
		if cfg.AccessKeyID == "" {
			return nil, errors.New("SNAPSHOT_S3_ACCESS_KEY_ID is required when snapshots are enabled")
		}
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("SNAPSHOT_S3_SECRET_ACCESS_KEY is required when snapshots are enabled")
		}
		if cfg.BucketName == "" {
			return nil, errors.New("SNAPSHOT_S3_BUCKET_NAME is required when snapshots are enabled")
		}
	}

	return cfg, nil
}

// S3Snapshot stores content payloads as JSON objects in an S3 bucket so the
// app can serve them when the remote source is unreachable.
type S3Snapshot struct {
	s3Client *s3.Client
	cfg      *S3Config
	prefix   string
}

// NewS3Snapshot creates a snapshot store for one content source. The prefix
// namespaces objects inside the shared bucket.
func NewS3Snapshot(cfg *S3Config, prefix string) (*S3Snapshot, error) {
	if !cfg.Enabled {
		return nil, errors.New("content snapshots are disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	snap := &S3Snapshot{
		s3Client: s3Client,
		cfg:      cfg,
		prefix:   strings.Trim(prefix, "/"),
	}

	if err := snap.checkBucket(); err != nil {
		return nil, err
	}

	log.Info().Str("bucket", cfg.BucketName).Str("prefix", snap.prefix).Msg("content snapshot bucket ready")
	return snap, nil
}

func (s *S3Snapshot) checkBucket() error {
	ctx := context.Background()
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.BucketName),
	})
	if err != nil {
		if !env.IsProd() {
			log.Warn().Str("bucket", s.cfg.BucketName).Msg("snapshot bucket not found, attempting to create it")
			return s.createBucket(ctx)
		}
		return fmt.Errorf("bucket %s not accessible: %w", s.cfg.BucketName, err)
	}
	return nil
}

func (s *S3Snapshot) createBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.cfg.BucketName),
	}
	if s.cfg.EndpointURL == "" && s.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.cfg.Region),
		}
	}
	if _, err := s.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.cfg.BucketName, err)
	}
	return nil
}

func (s *S3Snapshot) objectKey(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return s.prefix + "/" + key + ".json"
}

// Load reads one snapshot payload. A missing object maps to ErrNotFound so
// the loader can continue down the ladder.
func (s *S3Snapshot) Load(ctx context.Context, key string) (string, error) {
	result, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get snapshot from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return string(data), nil
}

// Save writes one snapshot payload, replacing any previous copy.
func (s *S3Snapshot) Save(ctx context.Context, key, value string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"snapshot-source": s.prefix,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}
	return nil
}
