package usecase

import (
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/infra"
	"github.com/secmon-lab/vanguard/pkg/repository/memory"
	"github.com/secmon-lab/vanguard/pkg/source"
	"github.com/secmon-lab/vanguard/pkg/stream"
)

const defaultWorkers = 2

type UseCase struct {
	clients  *infra.Clients
	jobs     interfaces.JobRepository
	streams  *stream.Manager
	pool     *workerPool
	resolver *source.Resolver

	artifactRoot    string
	signerID        string
	trustFailClosed bool
	publisher       interfaces.StoragePublisher
}

type Option func(*UseCase)

func WithArtifactRoot(root string) Option {
	return func(x *UseCase) {
		x.artifactRoot = root
	}
}

func WithWorkers(n int) Option {
	return func(x *UseCase) {
		if n > 0 {
			x.pool = newWorkerPool(n)
		}
	}
}

func WithResolver(resolver *source.Resolver) Option {
	return func(x *UseCase) {
		x.resolver = resolver
	}
}

func WithSignerID(id string) Option {
	return func(x *UseCase) {
		x.signerID = id
	}
}

// WithTrustFailClosed denies uploads when the trust service is unreachable
// instead of synthesizing a fallback permission.
func WithTrustFailClosed(failClosed bool) Option {
	return func(x *UseCase) {
		x.trustFailClosed = failClosed
	}
}

func WithPublisher(publisher interfaces.StoragePublisher) Option {
	return func(x *UseCase) {
		x.publisher = publisher
	}
}

func WithJobRepository(jobs interfaces.JobRepository) Option {
	return func(x *UseCase) {
		x.jobs = jobs
	}
}

func New(clients *infra.Clients, options ...Option) *UseCase {
	uc := &UseCase{
		clients:      clients,
		jobs:         memory.New(),
		streams:      stream.NewManager(),
		resolver:     source.New(),
		artifactRoot: "artifacts",
		signerID:     "vanguard",
	}

	for _, opt := range options {
		opt(uc)
	}

	if uc.pool == nil {
		uc.pool = newWorkerPool(defaultWorkers)
	}
	if uc.publisher == nil && clients.Storage() != nil {
		uc.publisher = NewObjectStager(clients.Storage())
	}

	return uc
}
