package usecase_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/mock"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra"
	"github.com/secmon-lab/vanguard/pkg/usecase"
)

func directoryRequest(t *testing.T) *model.ScanRequest {
	t.Helper()

	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))

	return &model.ScanRequest{
		WorkspaceID:  "ws-1",
		ComponentID:  "comp-1",
		AssessmentID: "assess-1",
		Profile:      "light",
		RequestedBy:  "tester",
		Source: model.SourceDescriptor{
			Kind:    types.SourceKindDirectory,
			Locator: dir,
		},
		Manifest: model.ManifestSource{
			Inline: `{"profiles":[{"name":"light"}]}`,
		},
	}
}

func waitForTerminal(t *testing.T, uc *usecase.UseCase, id types.TestID) *model.ScanJob {
	t.Helper()

	logStream, ok := uc.Stream(id)
	gt.True(t, ok)

	replay, live := logStream.Attach()
	defer logStream.Detach(live)

	terminal := false
	for _, event := range replay {
		if event.Type == model.EventTypeTerminal {
			terminal = true
		}
	}
	if !terminal {
		for range live {
		}
	}

	// the job record is finalized just after the terminal event
	deadline := time.Now().Add(5 * time.Second)
	for {
		job := gt.R1(uc.GetJob(context.Background(), id)).NoError(t)
		if job.Status.Terminal() {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not reach a terminal state", id)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScanPipelineSucceeds(t *testing.T) {
	artifactRoot := t.TempDir()

	scannerMock := &mock.ScannerMock{
		RunFunc: func(ctx context.Context, input *interfaces.ScanInput) (*interfaces.ScanOutput, error) {
			sarif := filepath.Join(input.ExportDir, "findings.sarif")
			gt.NoError(t, os.WriteFile(sarif, []byte(`{"version":"2.1.0"}`), 0644))
			return &interfaces.ScanOutput{ArtifactsPath: input.ExportDir}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithScanner(scannerMock)),
		usecase.WithArtifactRoot(artifactRoot),
		usecase.WithWorkers(1),
	)

	req := directoryRequest(t)
	submitted := gt.R1(uc.SubmitScan(context.Background(), req)).NoError(t)
	gt.V(t, submitted.Status).Equal(types.JobStatusQueued)

	job := waitForTerminal(t, uc, submitted.TestID)

	gt.V(t, job.Status).Equal(types.JobStatusSucceeded)
	gt.A(t, job.Errors).Length(0)
	gt.V(t, job.ManifestDigest).Equal(model.ManifestDigest(req.Manifest.Inline))

	calls := scannerMock.RunCalls()
	gt.A(t, calls).Length(1)
	gt.V(t, calls[0].Input.Profile).Equal(types.ProfileName("light"))
	gt.V(t, calls[0].Input.ManifestText).Equal(req.Manifest.Inline)

	// bundle layout
	bundleDir := filepath.Join(artifactRoot, submitted.TestID.String())
	raw := gt.R1(os.ReadFile(filepath.Join(bundleDir, model.BundleScanMetadata))).NoError(t)

	var meta map[string]any
	gt.NoError(t, json.Unmarshal(raw, &meta))
	gt.V(t, meta["test_id"]).Equal(submitted.TestID.String())
	gt.V(t, meta["workspace_id"]).Equal("ws-1")
	gt.V(t, meta["profile"]).Equal("light")
	gt.V(t, meta["manifest_digest"]).Equal(job.ManifestDigest)

	source := gt.Cast[map[string]any](t, meta["source"])
	gt.V(t, source["kind"]).Equal("directory")
	gt.V(t, source["content_hash"]).Equal(source["provenance_id"])

	// raw sarif was moved to its canonical reports path
	gt.V(t, job.Artifacts["sarif"]).Equal(filepath.Join(bundleDir, model.BundleSARIF))
	for _, path := range job.Artifacts {
		_, err := os.Stat(path)
		gt.NoError(t, err)
	}

	// manifest text and stream logs are preserved
	manifestRaw := gt.R1(os.ReadFile(filepath.Join(bundleDir, model.BundleManifest))).NoError(t)
	gt.V(t, string(manifestRaw)).Equal(req.Manifest.Inline)
	_, err := os.Stat(filepath.Join(bundleDir, model.BundleStreamLog))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(bundleDir, model.BundleRunnerLog))
	gt.NoError(t, err)
}

func TestScanPipelineFailingScanner(t *testing.T) {
	scannerMock := &mock.ScannerMock{
		RunFunc: func(ctx context.Context, input *interfaces.ScanInput) (*interfaces.ScanOutput, error) {
			return nil, goerr.Wrap(types.ErrExternalCommand, "runner exited with status 2")
		},
	}

	uc := usecase.New(infra.New(infra.WithScanner(scannerMock)),
		usecase.WithArtifactRoot(t.TempDir()),
		usecase.WithWorkers(1),
	)

	submitted := gt.R1(uc.SubmitScan(context.Background(), directoryRequest(t))).NoError(t)
	job := waitForTerminal(t, uc, submitted.TestID)

	gt.V(t, job.Status).Equal(types.JobStatusFailed)
	gt.True(t, len(job.Errors) > 0)

	logStream, ok := uc.Stream(submitted.TestID)
	gt.True(t, ok)
	history := logStream.History()
	last := history[len(history)-1]
	gt.V(t, last.Type).Equal(model.EventTypeTerminal)
	gt.V(t, last.Data["status"]).Equal("FAILED")
}

func TestScanPipelineInvalidRequest(t *testing.T) {
	uc := usecase.New(infra.New(), usecase.WithWorkers(1))

	req := directoryRequest(t)
	req.WorkspaceID = ""

	_, err := uc.SubmitScan(context.Background(), req)
	gt.Error(t, err)
}

func TestScanPipelineSerializedWorkers(t *testing.T) {
	artifactRoot := t.TempDir()

	running := make(chan struct{}, 2)
	scannerMock := &mock.ScannerMock{
		RunFunc: func(ctx context.Context, input *interfaces.ScanInput) (*interfaces.ScanOutput, error) {
			running <- struct{}{}
			defer func() { <-running }()

			// a second concurrent run would overflow the buffer check below
			if len(running) > 1 {
				return nil, goerr.New("scanner invoked concurrently")
			}
			time.Sleep(20 * time.Millisecond)
			return &interfaces.ScanOutput{ArtifactsPath: input.ExportDir}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithScanner(scannerMock)),
		usecase.WithArtifactRoot(artifactRoot),
		usecase.WithWorkers(1),
	)

	first := gt.R1(uc.SubmitScan(context.Background(), directoryRequest(t))).NoError(t)
	second := gt.R1(uc.SubmitScan(context.Background(), directoryRequest(t))).NoError(t)

	jobA := waitForTerminal(t, uc, first.TestID)
	jobB := waitForTerminal(t, uc, second.TestID)

	gt.V(t, jobA.Status).Equal(types.JobStatusSucceeded)
	gt.V(t, jobB.Status).Equal(types.JobStatusSucceeded)
	gt.A(t, scannerMock.RunCalls()).Length(2)
}
