package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/repository"
)

// jobRepository keeps the live job records. The mutex guards map insert and
// lookup only; field mutation during execution is confined to the owning
// worker, and Get hands out clones so readers never see torn writes.
type jobRepository struct {
	mu   sync.RWMutex
	jobs map[types.TestID]*model.ScanJob
}

// New creates a new in-memory job repository
func New() interfaces.JobRepository {
	return &jobRepository{
		jobs: make(map[types.TestID]*model.ScanJob),
	}
}

func (r *jobRepository) Create(ctx context.Context, job *model.ScanJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.TestID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "job already registered",
			goerr.V("test_id", job.TestID),
		)
	}

	r.jobs[job.TestID] = job
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id types.TestID) (*model.ScanJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "job not found",
			goerr.V("test_id", id),
		)
	}

	return job.Clone(), nil
}

func (r *jobRepository) Live(ctx context.Context, id types.TestID) (*model.ScanJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "job not found",
			goerr.V("test_id", id),
		)
	}

	return job, nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.ScanJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*model.ScanJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Clone())
	}

	return jobs, nil
}
