package interfaces

//go:generate moq -out ../mock/infra.go -pkg mock . Scanner TrustClient StoragePublisher

import (
	"context"
	"io"

	"cloud.google.com/go/bigquery"

	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// Scanner is the external scan runtime. It owns tool invocation and raw-format
// output; the pipeline only hands it a resolved workspace and a manifest.
type Scanner interface {
	Run(ctx context.Context, input *ScanInput) (*ScanOutput, error)
}

type ScanInput struct {
	Profile       types.ProfileName
	WorkspacePath string
	ManifestText  string
	ExportDir     string
	BundleID      string
}

type ScanOutput struct {
	ArtifactsPath string

	// Preexisting reports true when the scanner returned pre-built sample
	// metadata instead of performing a live scan. The pipeline then merges
	// onto the existing scan.json rather than overwriting it.
	Preexisting bool
}

// TrustClient is the remote verification authority that gates uploads.
type TrustClient interface {
	VerifyAndPermitUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadPermission, error)
}

// ObjectStorage is the minimal object-store capability used for manifest
// download and bundle staging. Implementations exist for S3-compatible stores
// and Google Cloud Storage.
type ObjectStorage interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Registry wraps the container runtime CLI for image transport and for
// extracting files out of an image filesystem.
type Registry interface {
	Pull(ctx context.Context, ref string) error
	Tag(ctx context.Context, src, dst string) error
	Push(ctx context.Context, ref string) error
	Login(ctx context.Context, server, user, secret string) error

	CreateContainer(ctx context.Context, ref string) (string, error)
	CopyFromContainer(ctx context.Context, containerID, srcPath, dstPath string) error
	RemoveContainer(ctx context.Context, containerID string) error
}

// Cosign wraps the external signing binary.
type Cosign interface {
	SignImage(ctx context.Context, ref string) error
	Attest(ctx context.Context, ref, predicatePath, predicateType string) error
	SignBlob(ctx context.Context, path string) (string, error)
	VerifyBlob(ctx context.Context, blobPath, sigPath string) error
}

// StoragePublisher moves a verified bundle to durable storage. StageAndPromote
// must not be called unless the permission's Permitted field is true.
type StoragePublisher interface {
	StageAndPromote(ctx context.Context, bundle *model.ArtifactBundle, perm *model.UploadPermission) (*model.UploadConfirmation, error)
}

// ManifestFetcher retrieves manifest text (and optional signature) from a URI.
// The returned cleanup must be called once the files have been read.
type ManifestFetcher interface {
	Fetch(ctx context.Context, uri, signatureURI string) (manifestPath string, signaturePath string, cleanup func(), err error)
}

type AnalyticsInsertOption func(*AnalyticsInsertConfig)

type AnalyticsInsertConfig struct {
	EnableRetry bool
}

func WithRetry(retry bool) AnalyticsInsertOption {
	return func(c *AnalyticsInsertConfig) {
		c.EnableRetry = retry
	}
}

// Analytics is the BigQuery-backed result export sink.
type Analytics interface {
	Insert(ctx context.Context, schema bigquery.Schema, data any, opts ...AnalyticsInsertOption) error

	GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTable(ctx context.Context, md *bigquery.TableMetadata) error
}
