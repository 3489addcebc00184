package s3

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// Client is an S3-compatible object store backed by minio-go. It works against
// AWS S3, MinIO and any other S3 API endpoint.
type Client struct {
	client *minio.Client
}

var _ interfaces.ObjectStorage = (*Client)(nil)

func New(endpoint, region, accessKey string, secretKey types.StorageSecretKey, useSSL bool) (*Client, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, string(secretKey), ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create S3 client", goerr.V("endpoint", endpoint))
	}

	return &Client{client: cli}, nil
}

func (x *Client) Put(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	if _, err := x.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		return goerr.Wrap(err, "failed to put object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	return nil
}

func (x *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := x.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get object", goerr.V("bucket", bucket), goerr.V("key", key))
	}

	// GetObject is lazy; probe the object so missing keys fail here, not at
	// first read.
	if _, err := obj.Stat(); err != nil {
		return nil, goerr.Wrap(types.ErrResourceNotFound, "object is not accessible",
			goerr.V("bucket", bucket), goerr.V("key", key),
		)
	}

	return obj, nil
}

func (x *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if _, err := x.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dstBucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey},
	); err != nil {
		return goerr.Wrap(err, "failed to copy object",
			goerr.V("src", srcBucket+"/"+srcKey),
			goerr.V("dst", dstBucket+"/"+dstKey),
		)
	}
	return nil
}

func (x *Client) Delete(ctx context.Context, bucket, key string) error {
	if err := x.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return goerr.Wrap(err, "failed to delete object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	return nil
}

func (x *Client) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range x.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, goerr.Wrap(obj.Err, "failed to list objects",
				goerr.V("bucket", bucket), goerr.V("prefix", prefix),
			)
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}
