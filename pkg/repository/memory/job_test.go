package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/repository/memory"
)

func newJob(id types.TestID) *model.ScanJob {
	return &model.ScanJob{
		TestID:      id,
		WorkspaceID: "ws-1",
		Status:      types.JobStatusQueued,
		QueuedAt:    time.Now().UTC(),
	}
}

func TestJobRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Create(ctx, newJob("j1")))

		job := gt.R1(repo.Get(ctx, "j1")).NoError(t)
		gt.V(t, job.TestID).Equal("j1")
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Create(ctx, newJob("j1")))
		gt.Error(t, repo.Create(ctx, newJob("j1")))
	})

	t.Run("get of unknown job fails", func(t *testing.T) {
		repo := memory.New()
		_, err := repo.Get(ctx, "nope")
		gt.Error(t, err)
	})

	t.Run("get returns a clone", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Create(ctx, newJob("j1")))

		snapshot := gt.R1(repo.Get(ctx, "j1")).NoError(t)
		snapshot.Status = types.JobStatusFailed
		snapshot.Errors = append(snapshot.Errors, "mutated copy")

		fresh := gt.R1(repo.Get(ctx, "j1")).NoError(t)
		gt.V(t, fresh.Status).Equal(types.JobStatusQueued)
		gt.A(t, fresh.Errors).Length(0)
	})

	t.Run("live returns the mutable record", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Create(ctx, newJob("j1")))

		live := gt.R1(repo.Live(ctx, "j1")).NoError(t)
		live.Status = types.JobStatusRunning

		fresh := gt.R1(repo.Get(ctx, "j1")).NoError(t)
		gt.V(t, fresh.Status).Equal(types.JobStatusRunning)
	})

	t.Run("list returns all jobs", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Create(ctx, newJob("j1")))
		gt.NoError(t, repo.Create(ctx, newJob("j2")))

		jobs := gt.R1(repo.List(ctx)).NoError(t)
		gt.A(t, jobs).Length(2)
	})
}
