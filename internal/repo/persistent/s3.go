package persistent

import (
	"context"
	"fmt"
	"io"

	"github.com/andreyxaxa/image-uploader/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore keeps uploaded images in an S3 compatible bucket (R2, MinIO,
// Garage).
type ObjectStore struct {
	s3c    *s3client.S3Client
	bucket string
}

func NewObjectStore(s3c *s3client.S3Client, bucket string) *ObjectStore {
	return &ObjectStore{s3c: s3c, bucket: bucket}
}

// Put writes body under key with contentType stored as the object's
// Content-Type, so the public URL serves it back with the right type.
func (r *ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	client, err := r.s3c.Client(ctx)
	if err != nil {
		return fmt.Errorf("ObjectStore - Put - r.s3c.Client: %w", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("ObjectStore - Put - client.PutObject: %w", err)
	}

	return nil
}

func (r *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	client, err := r.s3c.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Get - r.s3c.Client: %w", err)
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Get - client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Get - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *ObjectStore) Delete(ctx context.Context, key string) error {
	client, err := r.s3c.Client(ctx)
	if err != nil {
		return fmt.Errorf("ObjectStore - Delete - r.s3c.Client: %w", err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ObjectStore - Delete - client.DeleteObject: %w", err)
	}

	return nil
}
