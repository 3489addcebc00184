package interfaces

//go:generate moq -out ../mock/usecase.go -pkg mock . UseCase

import (
	"context"

	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/stream"
)

type UseCase interface {
	SubmitScan(ctx context.Context, req *model.ScanRequest) (*model.ScanJob, error)
	GetJob(ctx context.Context, id types.TestID) (*model.ScanJob, error)
	ListJobs(ctx context.Context) ([]*model.ScanJob, error)
	Stream(id types.TestID) (*stream.Stream, bool)
	RequestUpload(ctx context.Context, id types.TestID, tier types.StorageTier) (*model.UploadConfirmation, error)
}
