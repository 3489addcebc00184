package model

import (
	"time"

	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// ArtifactChecksum is computed fresh from disk when the upload request is
// built, never copied from prior metadata.
type ArtifactChecksum struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

type InnerSignature struct {
	Signer    string    `json:"signer"`
	Timestamp time.Time `json:"timestamp"`
	Signature string    `json:"signature"`
	Algorithm string    `json:"algorithm"`
}

type UploadRequest struct {
	ScanID       types.TestID                `json:"scan_id"`
	Tier         types.StorageTier           `json:"tier"`
	Signature    InnerSignature              `json:"signature"`
	Artifacts    map[string]ArtifactChecksum `json:"artifacts"`
	Metadata     map[string]any              `json:"scan_metadata,omitempty"`
	Destinations []string                    `json:"destinations,omitempty"`
}

type VerificationProof struct {
	ID        string    `json:"id"`
	Signature string    `json:"signature,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// StorageConfig is where the trust service tells us to put the bundle.
type StorageConfig struct {
	RawBucket    string `json:"raw_bucket,omitempty"`
	GoldenBucket string `json:"golden_bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
}

type UploadPermission struct {
	Permitted    bool              `json:"permitted"`
	PermissionID string            `json:"upload_permission_id"`
	Reason       string            `json:"reason,omitempty"`
	Proof        VerificationProof `json:"verification_proof"`
	Storage      StorageConfig     `json:"storage,omitempty"`
}

type UploadConfirmation struct {
	Status       types.UploadStatus `json:"status"`
	Uploaded     []string           `json:"uploaded,omitempty"`
	Destinations []string           `json:"destinations,omitempty"`
}
