package types

import (
	"log/slog"

	"github.com/google/uuid"
)

type (
	TestID       string
	WorkspaceID  string
	ComponentID  string
	AssessmentID string
	RequestID    string

	ProfileName string

	JobStatus    string
	UploadStatus string
	SourceKind   string
	StorageTier  string

	CosignKeyRef      string
	CosignKeyPassword string
	StorageSecretKey  string
)

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Terminal returns true when the job can no longer change state.
func (x JobStatus) Terminal() bool {
	return x == JobStatusSucceeded || x == JobStatusFailed
}

const (
	UploadStatusNone      UploadStatus = ""
	UploadStatusPermitted UploadStatus = "permitted"
	UploadStatusDenied    UploadStatus = "denied"
	UploadStatusUploaded  UploadStatus = "uploaded"
	UploadStatusFailed    UploadStatus = "upload_failed"
)

const (
	SourceKindGit       SourceKind = "git"
	SourceKindDirectory SourceKind = "directory"
	SourceKindArchive   SourceKind = "archive"
)

const (
	StorageTierRaw    StorageTier = "raw"
	StorageTierGolden StorageTier = "golden"
)

func NewTestID() TestID {
	return TestID(uuid.NewString())
}

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (x TestID) String() string       { return string(x) }
func (x WorkspaceID) String() string  { return string(x) }
func (x ComponentID) String() string  { return string(x) }
func (x AssessmentID) String() string { return string(x) }
func (x ProfileName) String() string  { return string(x) }
func (x RequestID) String() string    { return string(x) }

func (x CosignKeyPassword) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x StorageSecretKey) LogValue() slog.Value {
	return slog.StringValue("***********")
}
