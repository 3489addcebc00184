package usecase

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// ObjectStager uploads every file of a bundle into the raw bucket, then
// promotes the staged objects into the golden bucket by server-side copy. The
// two-phase layout means a half-finished upload never appears under golden.
type ObjectStager struct {
	storage interfaces.ObjectStorage
}

func NewObjectStager(storage interfaces.ObjectStorage) *ObjectStager {
	return &ObjectStager{storage: storage}
}

func (x *ObjectStager) StageAndPromote(ctx context.Context, bundle *model.ArtifactBundle, perm *model.UploadPermission) (*model.UploadConfirmation, error) {
	if x.storage == nil {
		return nil, goerr.Wrap(types.ErrConfigRequired, "object storage is not configured")
	}
	if perm.Storage.RawBucket == "" {
		return nil, goerr.Wrap(types.ErrInvalidRequest, "upload permission carries no raw bucket")
	}

	prefix := perm.Storage.Prefix
	if prefix == "" {
		prefix = filepath.Base(bundle.Root)
	}

	var staged []string
	err := filepath.WalkDir(bundle.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(bundle.Root, p)
		if err != nil {
			return goerr.Wrap(err, "failed to relativize bundle path", goerr.V("path", p))
		}
		key := path.Join(prefix, filepath.ToSlash(rel))

		fd, err := os.Open(filepath.Clean(p))
		if err != nil {
			return goerr.Wrap(err, "failed to open bundle file", goerr.V("path", p))
		}
		defer safe.Close(fd)

		st, err := fd.Stat()
		if err != nil {
			return goerr.Wrap(err, "failed to stat bundle file", goerr.V("path", p))
		}

		if err := x.storage.Put(ctx, perm.Storage.RawBucket, key, fd, st.Size()); err != nil {
			return goerr.Wrap(err, "failed to stage bundle file",
				goerr.V("bucket", perm.Storage.RawBucket),
				goerr.V("key", key),
			)
		}

		staged = append(staged, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	destinations := []string{objectURL(perm.Storage.RawBucket, prefix)}

	if perm.Storage.GoldenBucket != "" {
		for _, key := range staged {
			if err := x.storage.Copy(ctx, perm.Storage.RawBucket, key, perm.Storage.GoldenBucket, key); err != nil {
				return nil, goerr.Wrap(err, "failed to promote staged object",
					goerr.V("key", key),
					goerr.V("golden_bucket", perm.Storage.GoldenBucket),
				)
			}
		}
		destinations = append(destinations, objectURL(perm.Storage.GoldenBucket, prefix))
	}

	logging.From(ctx).Info("bundle published",
		"objects", len(staged),
		"destinations", destinations,
	)

	return &model.UploadConfirmation{
		Status:       types.UploadStatusUploaded,
		Uploaded:     staged,
		Destinations: destinations,
	}, nil
}

func objectURL(bucket, prefix string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(prefix, "/")
}

// RegistryMirror decorates another publisher: after the bundle objects land,
// it retags the scan image into the target repository, pushes it, and signs
// the pushed image when a cosign client is configured. The image steps are
// skipped silently when the bundle carries no image reference.
type RegistryMirror struct {
	inner      interfaces.StoragePublisher
	registry   interfaces.Registry
	cosign     interfaces.Cosign
	targetRepo string
}

func NewRegistryMirror(inner interfaces.StoragePublisher, registry interfaces.Registry, cosign interfaces.Cosign, targetRepo string) *RegistryMirror {
	return &RegistryMirror{
		inner:      inner,
		registry:   registry,
		cosign:     cosign,
		targetRepo: targetRepo,
	}
}

func (x *RegistryMirror) StageAndPromote(ctx context.Context, bundle *model.ArtifactBundle, perm *model.UploadPermission) (*model.UploadConfirmation, error) {
	conf, err := x.inner.StageAndPromote(ctx, bundle, perm)
	if err != nil {
		return nil, err
	}

	if x.registry == nil || x.targetRepo == "" || bundle.ImageRef == "" {
		return conf, nil
	}

	raw, err := os.ReadFile(filepath.Clean(bundle.ImageRef))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image reference", goerr.V("path", bundle.ImageRef))
	}
	srcRef := strings.TrimSpace(string(raw))
	if srcRef == "" {
		return conf, nil
	}

	dstRef := x.targetRepo + ":" + filepath.Base(bundle.Root)

	if err := x.registry.Tag(ctx, srcRef, dstRef); err != nil {
		return nil, goerr.Wrap(err, "failed to tag scan image", goerr.V("ref", dstRef))
	}
	if err := x.registry.Push(ctx, dstRef); err != nil {
		return nil, goerr.Wrap(err, "failed to push scan image", goerr.V("ref", dstRef))
	}

	if x.cosign != nil {
		if err := x.cosign.SignImage(ctx, dstRef); err != nil {
			return nil, goerr.Wrap(err, "failed to sign pushed image", goerr.V("ref", dstRef))
		}
		if bundle.ScanMetadata != "" {
			if err := x.cosign.Attest(ctx, dstRef, bundle.ScanMetadata, "custom"); err != nil {
				return nil, goerr.Wrap(err, "failed to attach scan attestation", goerr.V("ref", dstRef))
			}
		}
	}

	conf.Destinations = append(conf.Destinations, dstRef)

	return conf, nil
}
