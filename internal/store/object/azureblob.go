package object

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/systmms/secretd/internal/dserr"
)

// AzureBlobClient adapts an Azure Blob Storage container client to
// ObjectClient.
type AzureBlobClient struct {
	Client        *azblob.Client
	ContainerName string
}

// NewAzureBlobClient returns an ObjectClient backed by client for the
// given container.
func NewAzureBlobClient(client *azblob.Client, containerName string) *AzureBlobClient {
	return &AzureBlobClient{Client: client, ContainerName: containerName}
}

func (c *AzureBlobClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.Client.DownloadStream(ctx, c.ContainerName, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return nil, ErrNotFound
		}
		return nil, dserr.Wrap("store/object.AzureBlobClient.GetObject", dserr.StoreUnavailable, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *AzureBlobClient) PutObject(ctx context.Context, key string, data []byte) error {
	_, err := c.Client.UploadStream(ctx, c.ContainerName, key, bytes.NewReader(data), nil)
	if err != nil {
		return dserr.Wrap("store/object.AzureBlobClient.PutObject", dserr.StoreUnavailable, err)
	}
	return nil
}
