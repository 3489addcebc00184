package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// Client is the Google Cloud Storage backend of the object-store capability.
type Client struct {
	client *storage.Client
}

var _ interfaces.ObjectStorage = (*Client)(nil)

func New(ctx context.Context, options ...option.ClientOption) (*Client, error) {
	cli, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}
	return &Client{client: cli}, nil
}

func (x *Client) Put(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	w := x.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	return nil
}

func (x *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := x.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, goerr.Wrap(types.ErrResourceNotFound, "object is not accessible",
				goerr.V("bucket", bucket), goerr.V("key", key),
			)
		}
		return nil, goerr.Wrap(err, "failed to get object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	return r, nil
}

func (x *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	src := x.client.Bucket(srcBucket).Object(srcKey)
	dst := x.client.Bucket(dstBucket).Object(dstKey)

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return goerr.Wrap(err, "failed to copy object",
			goerr.V("src", srcBucket+"/"+srcKey),
			goerr.V("dst", dstBucket+"/"+dstKey),
		)
	}
	return nil
}

func (x *Client) Delete(ctx context.Context, bucket, key string) error {
	if err := x.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	return nil
}

func (x *Client) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := x.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects",
				goerr.V("bucket", bucket), goerr.V("prefix", prefix),
			)
		}
		keys = append(keys, attrs.Name)
	}

	return keys, nil
}
