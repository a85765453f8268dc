package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/systmms/secretd/internal/dserr"
)

// S3Client adapts an AWS S3 client to ObjectClient.
type S3Client struct {
	API    *s3.Client
	Bucket string
}

// NewS3Client returns an ObjectClient backed by api for the given bucket.
func NewS3Client(api *s3.Client, bucket string) *S3Client {
	return &S3Client{API: api, Bucket: bucket}
}

// NewS3ClientFromEnv loads the AWS default credential chain for region
// and returns an ObjectClient for bucket.
func NewS3ClientFromEnv(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3Client(s3.NewFromConfig(cfg), bucket), nil
}

func (c *S3Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := c.API.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, dserr.Wrap("store/object.S3Client.GetObject", dserr.StoreUnavailable, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (c *S3Client) PutObject(ctx context.Context, key string, data []byte) error {
	_, err := c.API.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return dserr.Wrap("store/object.S3Client.PutObject", dserr.StoreUnavailable, err)
	}
	return nil
}
