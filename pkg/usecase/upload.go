package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// RequestUpload runs the two-phase upload for a completed job: build an upload
// request with checksums computed fresh from disk, ask the trust service for a
// permission, and only on an affirmative permission hand the bundle to the
// publisher. A denial stops the flow before any byte leaves the host.
func (x *UseCase) RequestUpload(ctx context.Context, id types.TestID, tier types.StorageTier) (*model.UploadConfirmation, error) {
	job, err := x.jobs.Live(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(types.ErrJobNotFound, "unknown scan job", goerr.V("test_id", id))
	}
	if job.Status != types.JobStatusSucceeded {
		return nil, goerr.Wrap(types.ErrJobNotCompleted, "upload requires a succeeded job",
			goerr.V("test_id", id),
			goerr.V("status", job.Status),
		)
	}

	bundleDir := filepath.Join(x.artifactRoot, id.String())
	bundle := model.DiscoverBundle(bundleDir)
	if bundle.ScanMetadata == "" {
		return nil, goerr.Wrap(types.ErrResourceNotFound, "scan bundle has no metadata file",
			goerr.V("bundle", bundleDir),
		)
	}

	req, err := x.buildUploadRequest(ctx, id, tier, job, bundle)
	if err != nil {
		return nil, err
	}

	perm, err := x.requestPermission(ctx, req)
	if err != nil {
		job.UploadStatus = types.UploadStatusDenied
		return nil, err
	}

	job.UploadPermissionID = perm.PermissionID
	job.VerificationProof = perm.Proof.ID

	if !perm.Permitted {
		job.UploadStatus = types.UploadStatusDenied
		logging.From(ctx).Warn("upload denied by trust service",
			"test_id", id,
			"reason", perm.Reason,
		)
		return &model.UploadConfirmation{Status: types.UploadStatusDenied}, nil
	}

	job.UploadStatus = types.UploadStatusPermitted

	if x.publisher == nil {
		return nil, goerr.Wrap(types.ErrConfigRequired, "no storage publisher is configured")
	}

	conf, err := x.publisher.StageAndPromote(ctx, bundle, perm)
	if err != nil {
		// the permission stays on record so the upload can be retried
		job.UploadStatus = types.UploadStatusFailed
		return nil, goerr.Wrap(err, "failed to publish bundle", goerr.V("test_id", id))
	}

	job.UploadStatus = types.UploadStatusUploaded

	logging.From(ctx).Info("bundle upload completed",
		"test_id", id,
		"permission_id", perm.PermissionID,
		"destinations", conf.Destinations,
	)

	return conf, nil
}

// buildUploadRequest checksums every discovered artifact and signs the scan
// metadata. Without a cosign key the signature degrades to a digest-only
// marker; the trust service decides whether that is acceptable.
func (x *UseCase) buildUploadRequest(ctx context.Context, id types.TestID, tier types.StorageTier, job *model.ScanJob, bundle *model.ArtifactBundle) (*model.UploadRequest, error) {
	artifacts := make(map[string]model.ArtifactChecksum)
	for name, path := range bundle.ArtifactMap() {
		sum, size, err := hashFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to checksum artifact",
				goerr.V("artifact", name),
				goerr.V("path", path),
			)
		}

		rel, err := filepath.Rel(bundle.Root, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		artifacts[name] = model.ArtifactChecksum{
			Path:   filepath.ToSlash(rel),
			SHA256: sum,
			Size:   size,
		}
	}

	sig, err := x.signMetadata(ctx, bundle.ScanMetadata)
	if err != nil {
		return nil, err
	}

	return &model.UploadRequest{
		ScanID:    id,
		Tier:      tier,
		Signature: sig,
		Artifacts: artifacts,
		Metadata:  job.Metadata,
	}, nil
}

func (x *UseCase) signMetadata(ctx context.Context, metadataPath string) (model.InnerSignature, error) {
	sig := model.InnerSignature{
		Signer:    x.signerID,
		Timestamp: time.Now().UTC(),
	}

	if cosign := x.clients.Cosign(); cosign != nil {
		sigPath, err := cosign.SignBlob(ctx, metadataPath)
		if err != nil {
			return sig, goerr.Wrap(err, "failed to sign scan metadata")
		}
		raw, err := os.ReadFile(filepath.Clean(sigPath))
		if err != nil {
			return sig, goerr.Wrap(err, "failed to read metadata signature", goerr.V("path", sigPath))
		}

		sig.Algorithm = "cosign"
		sig.Signature = string(raw)
		return sig, nil
	}

	// unsigned deployments still bind the request to the exact metadata bytes
	sum, _, err := hashFile(metadataPath)
	if err != nil {
		return sig, goerr.Wrap(err, "failed to digest scan metadata")
	}
	sig.Algorithm = "sha256-digest"
	sig.Signature = base64.StdEncoding.EncodeToString([]byte(sum))

	return sig, nil
}

// requestPermission asks the trust service. Transport failures either deny the
// upload (fail-closed) or synthesize a local fallback permission whose reason
// records the degradation.
func (x *UseCase) requestPermission(ctx context.Context, req *model.UploadRequest) (*model.UploadPermission, error) {
	trust := x.clients.Trust()
	if trust == nil {
		return nil, goerr.Wrap(types.ErrConfigRequired, "trust service is not configured")
	}

	perm, err := trust.VerifyAndPermitUpload(ctx, req)
	if err == nil {
		return perm, nil
	}

	if x.trustFailClosed {
		return nil, goerr.Wrap(types.ErrUploadDenied, "trust service unreachable", goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Warn("trust service unreachable, issuing fallback permission",
		"scan_id", req.ScanID,
		"error", err,
	)

	return &model.UploadPermission{
		Permitted:    true,
		PermissionID: "fallback-" + types.NewRequestID().String(),
		Reason:       "fallback: trust service unreachable: " + err.Error(),
		Proof: model.VerificationProof{
			ID:       "fallback-" + req.ScanID.String(),
			IssuedAt: time.Now().UTC(),
		},
	}, nil
}

func hashFile(path string) (string, int64, error) {
	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", 0, err
	}
	defer safe.Close(fd)

	h := sha256.New()
	size, err := io.Copy(h, fd)
	if err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}
