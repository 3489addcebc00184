package stream

import (
	"sync"

	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// Manager is the id -> stream registry. One coarse lock guards insert, lookup
// and remove only; it is never held across event emission. The manager does
// not enforce a single subscriber per stream; when that matters the transport
// layer must serialize connections per job id.
type Manager struct {
	mu      sync.Mutex
	streams map[types.TestID]*Stream
}

func NewManager() *Manager {
	return &Manager{
		streams: make(map[types.TestID]*Stream),
	}
}

// Register creates (or returns the existing) stream for id.
func (x *Manager) Register(id types.TestID) *Stream {
	x.mu.Lock()
	defer x.mu.Unlock()

	if s, ok := x.streams[id]; ok {
		return s
	}

	s := New(id)
	x.streams[id] = s
	return s
}

func (x *Manager) Get(id types.TestID) (*Stream, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.streams[id]
	return s, ok
}

func (x *Manager) Remove(id types.TestID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.streams, id)
}
