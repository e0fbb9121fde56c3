package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Store is an S3-backed BlobStore.
type S3Store struct {
	bucket   string
	uploader *s3manager.Uploader
	client   *s3.S3
}

// NewS3Store creates an S3Store for the given region and bucket using the
// default credential chain.
func NewS3Store(region, bucket string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
		client:   s3.New(sess),
	}, nil
}

// Put uploads data under the given key, overwriting any existing object.
func (s *S3Store) Put(ctx context.Context, path string, data []byte) (string, error) {
	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return result.Location, nil
}

// Get downloads the object at the given key.
func (s *S3Store) Get(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from S3: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
