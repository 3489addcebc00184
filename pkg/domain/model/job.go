package model

import (
	"time"

	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// ScanJob is the scheduler-owned record of one scan run. Fields are mutated
// only by the worker executing the job (and, after completion, by the upload
// handler); readers get a copy via Clone.
type ScanJob struct {
	TestID       types.TestID       `json:"test_id"`
	WorkspaceID  types.WorkspaceID  `json:"workspace_id"`
	ComponentID  types.ComponentID  `json:"component_id"`
	AssessmentID types.AssessmentID `json:"assessment_id"`
	Source       SourceDescriptor   `json:"source"`
	Profile      types.ProfileName  `json:"profile"`
	RequestedBy  string             `json:"requested_by,omitempty"`

	Status      types.JobStatus `json:"status"`
	QueuedAt    time.Time       `json:"queued_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`

	Artifacts map[string]string `json:"artifacts,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`

	UploadStatus       types.UploadStatus `json:"upload_status,omitempty"`
	UploadPermissionID string             `json:"upload_permission_id,omitempty"`
	VerificationProof  string             `json:"verification_proof,omitempty"`
	ManifestDigest     string             `json:"manifest_digest,omitempty"`
}

func NewScanJob(req *ScanRequest, now time.Time) *ScanJob {
	return &ScanJob{
		TestID:       req.TestID,
		WorkspaceID:  req.WorkspaceID,
		ComponentID:  req.ComponentID,
		AssessmentID: req.AssessmentID,
		Source:       req.Source,
		Profile:      req.Profile,
		RequestedBy:  req.RequestedBy,
		Status:       types.JobStatusQueued,
		QueuedAt:     now,
	}
}

// Clone returns a deep copy that is safe to hand to concurrent readers.
func (x *ScanJob) Clone() *ScanJob {
	job := *x

	if x.StartedAt != nil {
		t := *x.StartedAt
		job.StartedAt = &t
	}
	if x.CompletedAt != nil {
		t := *x.CompletedAt
		job.CompletedAt = &t
	}

	if x.Artifacts != nil {
		job.Artifacts = make(map[string]string, len(x.Artifacts))
		for k, v := range x.Artifacts {
			job.Artifacts[k] = v
		}
	}
	if x.Metadata != nil {
		job.Metadata = make(map[string]any, len(x.Metadata))
		for k, v := range x.Metadata {
			job.Metadata[k] = v
		}
	}

	job.Warnings = append([]string(nil), x.Warnings...)
	job.Errors = append([]string(nil), x.Errors...)

	return &job
}
