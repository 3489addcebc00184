package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/stream"
	"github.com/secmon-lab/vanguard/pkg/utils/errutil"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
)

// workerPool executes job closures on a fixed number of goroutines. Enqueue
// never blocks the submitter beyond the channel hand-off; a worker always
// finishes its loop and returns to the pool regardless of job outcome.
type workerPool struct {
	tasks chan func()
}

func newWorkerPool(size int) *workerPool {
	pool := &workerPool{
		// submission must not block the caller; jobs queue here until a
		// worker is free
		tasks: make(chan func(), 1024),
	}

	for i := 0; i < size; i++ {
		go pool.loop()
	}

	return pool
}

func (x *workerPool) loop() {
	for task := range x.tasks {
		task()
	}
}

func (x *workerPool) enqueue(task func()) {
	x.tasks <- task
}

// SubmitScan validates the request, registers a QUEUED job and its event
// stream, and enqueues the pipeline run. It returns immediately with the job
// handle; execution happens on the worker pool.
func (x *UseCase) SubmitScan(ctx context.Context, req *model.ScanRequest) (*model.ScanJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.TestID == "" {
		req.TestID = types.NewTestID()
	}

	job := model.NewScanJob(req, time.Now().UTC())
	if err := x.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	logStream := x.streams.Register(req.TestID)
	logStream.Emit(model.EventTypeStatus, map[string]any{
		"status":  string(types.JobStatusQueued),
		"test_id": req.TestID.String(),
	})

	// The closure captures the fully-built request; the scheduler treats it
	// as read-only from here on.
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	x.pool.enqueue(func() {
		x.executeJob(bgCtx, req, job, logStream)
	})

	return job.Clone(), nil
}

// executeJob is the single worker-side owner of the job record while running.
func (x *UseCase) executeJob(ctx context.Context, req *model.ScanRequest, job *model.ScanJob, logStream *stream.Stream) {
	now := time.Now().UTC()
	job.Status = types.JobStatusRunning
	job.StartedAt = &now

	logStream.Emit(model.EventTypeStatus, map[string]any{
		"status":  string(types.JobStatusRunning),
		"test_id": req.TestID.String(),
	})

	result, err := x.RunPipeline(ctx, req, logStream)

	completed := time.Now().UTC()
	job.CompletedAt = &completed

	if result != nil {
		job.Artifacts = result.Bundle.ArtifactMap()
		job.Warnings = append(job.Warnings, result.Warnings...)
		job.Errors = append(job.Errors, result.Errors...)
		job.Metadata = result.Metadata
		job.ManifestDigest = result.ManifestDigest
	}

	if err != nil {
		job.Status = types.JobStatusFailed
		job.Errors = append(job.Errors, err.Error())
		errutil.HandleError(ctx, "scan job failed", err)
		return
	}

	job.Status = types.JobStatusSucceeded

	if x.clients.Analytics() != nil {
		if err := x.exportResult(ctx, result); err != nil {
			job.Warnings = append(job.Warnings, "analytics export failed: "+err.Error())
			errutil.HandleError(ctx, "failed to export scan result", err)
		}
	}
}

func (x *UseCase) GetJob(ctx context.Context, id types.TestID) (*model.ScanJob, error) {
	return x.jobs.Get(ctx, id)
}

func (x *UseCase) ListJobs(ctx context.Context) ([]*model.ScanJob, error) {
	return x.jobs.List(ctx)
}

func (x *UseCase) Stream(id types.TestID) (*stream.Stream, bool) {
	return x.streams.Get(id)
}
