package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/vision4k/vision4k-backend/config"
)

// S3Storage implements the Store interface against S3 or any S3-compatible
// endpoint (minio, R2). Keys map directly to object keys in one bucket.
type S3Storage struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

// NewS3Storage builds the S3 client from the config, ensures the bucket
// exists, and returns the store.
func NewS3Storage(cfg config.Config) (*S3Storage, error) {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("S3 access key and secret key are required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg))
			o.UsePathStyle = true
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.S3Bucket)})
	if err != nil {
		logrus.WithField("bucket", cfg.S3Bucket).Info("media.store: bucket not found, creating")
		_, createErr := client.CreateBucket(context.Background(), &s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3Bucket),
			CreateBucketConfiguration: &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(cfg.S3Region),
			},
		})
		if createErr != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.S3Bucket, createErr)
		}
	}

	return &S3Storage{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(publicBase(cfg), "/"),
	}, nil
}

func endpointURL(cfg config.Config) string {
	scheme := "https"
	if !cfg.S3UseSSL {
		scheme = "http"
	}
	if strings.Contains(cfg.S3Endpoint, "://") {
		return cfg.S3Endpoint
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.S3Endpoint)
}

func publicBase(cfg config.Config) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	if cfg.S3Endpoint != "" {
		return endpointURL(cfg) + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

func (s *S3Storage) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	if filename == "" || strings.ContainsAny(filename, "/\\") {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}
	key := subDirFor(assetType) + "/" + filename

	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object '%s': %w", key, err)
	}
	return key, nil
}

func (s *S3Storage) Open(key string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to get object '%s': %w", key, err)
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

func (s *S3Storage) Exists(key string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object '%s': %w", key, err)
	}
	return true, nil
}

func (s *S3Storage) Delete(key string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s': %w", key, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}
