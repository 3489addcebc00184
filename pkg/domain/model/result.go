package model

import (
	"time"

	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

type StepOutcome struct {
	Name        string    `json:"name" bigquery:"name"`
	Status      string    `json:"status" bigquery:"status"`
	Error       string    `json:"error,omitempty" bigquery:"error"`
	StartedAt   time.Time `json:"started_at" bigquery:"started_at"`
	CompletedAt time.Time `json:"completed_at" bigquery:"completed_at"`
}

const (
	StepStatusSucceeded = "succeeded"
	StepStatusFailed    = "failed"
)

// PipelineResult is the read-only outcome of one pipeline run.
type PipelineResult struct {
	TestID       types.TestID       `json:"test_id" bigquery:"test_id"`
	WorkspaceID  types.WorkspaceID  `json:"workspace_id" bigquery:"workspace_id"`
	ComponentID  types.ComponentID  `json:"component_id" bigquery:"component_id"`
	AssessmentID types.AssessmentID `json:"assessment_id" bigquery:"assessment_id"`

	Status types.JobStatus `json:"status" bigquery:"status"`
	Bundle *ArtifactBundle `json:"-" bigquery:"-"`
	Steps  []StepOutcome   `json:"steps" bigquery:"steps"`

	Metadata map[string]any `json:"metadata,omitempty" bigquery:"-"`
	Warnings []string       `json:"warnings,omitempty" bigquery:"warnings"`
	Errors   []string       `json:"errors,omitempty" bigquery:"errors"`

	UploadStatus   types.UploadStatus `json:"upload_status,omitempty" bigquery:"upload_status"`
	ManifestDigest string             `json:"manifest_digest,omitempty" bigquery:"manifest_digest"`

	StartedAt   time.Time `json:"started_at" bigquery:"started_at"`
	CompletedAt time.Time `json:"completed_at" bigquery:"completed_at"`
}

// ResultRawRecord is the flattened row shape for analytics export. Timestamp
// overrides the nested time with epoch micros for partitioning.
type ResultRawRecord struct {
	PipelineResult
	Timestamp int64 `json:"timestamp" bigquery:"timestamp"`
}
