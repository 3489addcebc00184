package interfaces

import (
	"context"

	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// JobRepository is the job registry. The in-memory implementation is the
// default; the interface exists so a durable store can be swapped in.
type JobRepository interface {
	Create(ctx context.Context, job *model.ScanJob) error
	Get(ctx context.Context, id types.TestID) (*model.ScanJob, error)
	List(ctx context.Context) ([]*model.ScanJob, error)

	// Live returns the mutable record. Only the job's owning worker (or the
	// upload handler, after completion) may write through it.
	Live(ctx context.Context, id types.TestID) (*model.ScanJob, error)
}
