package object

import (
	"bytes"
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/systmms/secretd/internal/dserr"
)

// GCSClient adapts a Google Cloud Storage bucket handle to ObjectClient.
type GCSClient struct {
	Bucket *storage.BucketHandle
}

// NewGCSClient returns an ObjectClient backed by the given bucket handle.
func NewGCSClient(bucket *storage.BucketHandle) *GCSClient {
	return &GCSClient{Bucket: bucket}
}

func (c *GCSClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	reader, err := c.Bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, dserr.Wrap("store/object.GCSClient.GetObject", dserr.StoreUnavailable, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (c *GCSClient) PutObject(ctx context.Context, key string, data []byte) error {
	writer := c.Bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return dserr.Wrap("store/object.GCSClient.PutObject", dserr.StoreUnavailable, err)
	}
	if err := writer.Close(); err != nil {
		return dserr.Wrap("store/object.GCSClient.PutObject", dserr.StoreUnavailable, err)
	}
	return nil
}
