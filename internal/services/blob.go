package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const downloadURLExpiry = 15 * time.Minute

// BlobStore stores evidence images and profile pictures in S3
type BlobStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewBlobStore creates a blob store backed by an S3 bucket. endpoint
// overrides the AWS endpoint for S3-compatible providers; accessKey and
// secretKey fall back to the default credential chain when empty.
func NewBlobStore(ctx context.Context, region, bucket, accessKey, secretKey, endpoint string) (*BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &BlobStore{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

// Upload writes a blob and returns its URL
func (b *BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key), nil
}

// PresignDownload generates a temporary download URL for a stored blob
func (b *BlobStore) PresignDownload(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(b.client)
	request, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = downloadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return request.URL, nil
}
