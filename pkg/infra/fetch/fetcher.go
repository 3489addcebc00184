package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// container paths for oci:// manifest images
const (
	ociManifestPath  = "/manifest.json"
	ociSignaturePath = "/manifest.sig"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves manifest text and an optional detached signature from one
// of several transport backends. The cleanup closure returned by Fetch must be
// invoked once the files have been read.
type Fetcher struct {
	httpClient HTTPClient
	storage    interfaces.ObjectStorage
	registry   interfaces.Registry
}

var _ interfaces.ManifestFetcher = (*Fetcher)(nil)

type Option func(*Fetcher)

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Fetcher) {
		x.httpClient = client
	}
}

func WithObjectStorage(storage interfaces.ObjectStorage) Option {
	return func(x *Fetcher) {
		x.storage = storage
	}
}

func WithRegistry(registry interfaces.Registry) Option {
	return func(x *Fetcher) {
		x.registry = registry
	}
}

func New(options ...Option) *Fetcher {
	fetcher := &Fetcher{
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(fetcher)
	}
	return fetcher
}

var noCleanup = func() {}

func (x *Fetcher) Fetch(ctx context.Context, uri, signatureURI string) (string, string, func(), error) {
	switch scheme(uri) {
	case "", "file":
		return x.fetchLocal(uri, signatureURI)
	case "s3":
		return x.fetchS3(ctx, uri, signatureURI)
	case "http", "https":
		return x.fetchHTTP(ctx, uri, signatureURI)
	case "oci":
		return x.fetchOCI(ctx, uri)
	default:
		return "", "", noCleanup, goerr.Wrap(types.ErrUnsupportedKind, "unsupported manifest URI scheme",
			goerr.V("uri", uri),
		)
	}
}

func (x *Fetcher) fetchLocal(uri, signatureURI string) (string, string, func(), error) {
	manifestPath := strings.TrimPrefix(uri, "file://")
	if _, err := os.Stat(manifestPath); err != nil {
		return "", "", noCleanup, goerr.Wrap(types.ErrResourceNotFound, "manifest file is not accessible",
			goerr.V("path", manifestPath),
		)
	}

	var sigPath string
	if signatureURI != "" {
		if s := scheme(signatureURI); s != "" && s != "file" {
			return "", "", noCleanup, goerr.Wrap(types.ErrInvalidRequest,
				"signature URI of a local manifest must also be local",
				goerr.V("signature_uri", signatureURI),
			)
		}
		sigPath = strings.TrimPrefix(signatureURI, "file://")
		if _, err := os.Stat(sigPath); err != nil {
			return "", "", noCleanup, goerr.Wrap(types.ErrResourceNotFound, "signature file is not accessible",
				goerr.V("path", sigPath),
			)
		}
	}

	return manifestPath, sigPath, noCleanup, nil
}

func (x *Fetcher) fetchS3(ctx context.Context, uri, signatureURI string) (string, string, func(), error) {
	if x.storage == nil {
		return "", "", noCleanup, goerr.Wrap(types.ErrConfigRequired, "object storage is not configured")
	}

	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return "", "", noCleanup, err
	}

	tmpDir, err := os.MkdirTemp("", "vanguard.manifest.*")
	if err != nil {
		return "", "", noCleanup, goerr.Wrap(err, "failed to create temp directory for manifest")
	}
	cleanup := func() { safe.RemoveAll(tmpDir) }

	manifestPath := filepath.Join(tmpDir, "manifest.json")
	if err := x.downloadObject(ctx, bucket, key, manifestPath); err != nil {
		cleanup()
		return "", "", noCleanup, err
	}

	var sigPath string
	if signatureURI != "" {
		sigBucket, sigKey := bucket, signatureURI
		if scheme(signatureURI) == "s3" {
			if sigBucket, sigKey, err = parseS3URI(signatureURI); err != nil {
				cleanup()
				return "", "", noCleanup, err
			}
		}

		sigPath = filepath.Join(tmpDir, "manifest.sig")
		if err := x.downloadObject(ctx, sigBucket, sigKey, sigPath); err != nil {
			cleanup()
			return "", "", noCleanup, err
		}
	}

	return manifestPath, sigPath, cleanup, nil
}

func (x *Fetcher) fetchHTTP(ctx context.Context, uri, signatureURI string) (string, string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "vanguard.manifest.*")
	if err != nil {
		return "", "", noCleanup, goerr.Wrap(err, "failed to create temp directory for manifest")
	}
	cleanup := func() { safe.RemoveAll(tmpDir) }

	manifestPath := filepath.Join(tmpDir, "manifest.json")
	if err := x.downloadHTTP(ctx, uri, manifestPath); err != nil {
		cleanup()
		return "", "", noCleanup, err
	}

	// signature retrieval is best-effort over HTTP
	var sigPath string
	if signatureURI != "" {
		sigPath = filepath.Join(tmpDir, "manifest.sig")
		if err := x.downloadHTTP(ctx, signatureURI, sigPath); err != nil {
			logging.From(ctx).Warn("failed to fetch manifest signature, continue without it",
				"uri", signatureURI, "error", err,
			)
			sigPath = ""
		}
	}

	return manifestPath, sigPath, cleanup, nil
}

// fetchOCI pulls the image, creates (not runs) a container from it, copies the
// manifest files out of its filesystem and removes the container. The
// container and temp directory are removed even when a step fails.
func (x *Fetcher) fetchOCI(ctx context.Context, uri string) (string, string, func(), error) {
	if x.registry == nil {
		return "", "", noCleanup, goerr.Wrap(types.ErrConfigRequired, "registry client is not configured")
	}

	ref := strings.TrimPrefix(uri, "oci://")
	if err := x.registry.Pull(ctx, ref); err != nil {
		return "", "", noCleanup, err
	}

	tmpDir, err := os.MkdirTemp("", "vanguard.manifest.*")
	if err != nil {
		return "", "", noCleanup, goerr.Wrap(err, "failed to create temp directory for manifest")
	}
	cleanup := func() { safe.RemoveAll(tmpDir) }

	containerID, err := x.registry.CreateContainer(ctx, ref)
	if err != nil {
		cleanup()
		return "", "", noCleanup, err
	}
	defer func() {
		if err := x.registry.RemoveContainer(ctx, containerID); err != nil {
			logging.From(ctx).Warn("failed to remove manifest container", "container", containerID, "error", err)
		}
	}()

	manifestPath := filepath.Join(tmpDir, "manifest.json")
	if err := x.registry.CopyFromContainer(ctx, containerID, ociManifestPath, manifestPath); err != nil {
		cleanup()
		return "", "", noCleanup, goerr.Wrap(err, "manifest not found in image", goerr.V("ref", ref))
	}

	sigPath := filepath.Join(tmpDir, "manifest.sig")
	if err := x.registry.CopyFromContainer(ctx, containerID, ociSignaturePath, sigPath); err != nil {
		sigPath = ""
	}

	return manifestPath, sigPath, cleanup, nil
}

func (x *Fetcher) downloadObject(ctx context.Context, bucket, key, dst string) error {
	body, err := x.storage.Get(ctx, bucket, key)
	if err != nil {
		return goerr.Wrap(err, "failed to get object", goerr.V("bucket", bucket), goerr.V("key", key))
	}
	defer safe.Close(body)

	return writeFile(dst, body)
}

func (x *Fetcher) downloadHTTP(ctx context.Context, uri, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("uri", uri))
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch", goerr.V("uri", uri))
	}
	defer safe.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return goerr.Wrap(types.ErrResourceNotFound, "unexpected status code",
			goerr.V("uri", uri),
			goerr.V("code", resp.StatusCode),
		)
	}

	return writeFile(dst, resp.Body)
}

func writeFile(dst string, body io.Reader) error {
	fd, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", dst))
	}
	defer safe.Close(fd)

	if _, err := io.Copy(fd, body); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("path", dst))
	}

	return nil
}

func scheme(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Scheme
}

func parseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", goerr.Wrap(types.ErrInvalidRequest, "invalid s3 URI", goerr.V("uri", uri))
	}
	return parts[0], parts[1], nil
}
