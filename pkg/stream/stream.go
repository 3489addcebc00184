package stream

import (
	"sync"
	"time"

	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// subscriber channel capacity. A handoff to a full channel is dropped; the
// event is still kept in history for a late or replacement subscriber.
const subscriberBuffer = 256

// Stream is a per-job append-only event log with live fan-out to a single
// attached subscriber. History append happens under the lock; the channel
// handoff is non-blocking so a slow or disconnected consumer never stalls the
// pipeline.
type Stream struct {
	id types.TestID

	mu      sync.Mutex
	history []model.LogEvent
	sub     chan model.LogEvent
	closed  bool
}

func New(id types.TestID) *Stream {
	return &Stream{id: id}
}

func (x *Stream) ID() types.TestID {
	return x.id
}

// Emit appends an event to history and hands it to the attached subscriber if
// one is connected. Emit after Close is a no-op.
func (x *Stream) Emit(eventType model.EventType, data map[string]any) {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}

	event := model.LogEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	x.history = append(x.history, event)
	sub := x.sub
	x.mu.Unlock()

	if sub != nil {
		select {
		case sub <- event:
		default:
		}
	}
}

// Close emits the terminal event and marks the stream finished. The attached
// subscriber channel is closed so its consumer loop ends even if the terminal
// handoff itself is dropped.
func (x *Stream) Close(status types.JobStatus, data map[string]any) {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["status"] = string(status)

	event := model.LogEvent{
		Type:      model.EventTypeTerminal,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	x.history = append(x.history, event)
	x.closed = true
	sub := x.sub
	x.sub = nil
	x.mu.Unlock()

	if sub != nil {
		select {
		case sub <- event:
		default:
		}
		close(sub)
	}
}

func (x *Stream) Closed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.closed
}

// History returns a copy of all events emitted so far.
func (x *Stream) History() []model.LogEvent {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]model.LogEvent(nil), x.history...)
}

// Attach registers a subscriber and returns the history snapshot to replay
// plus the live channel. The snapshot and the channel registration happen
// under one lock acquisition, so an event lands either in the snapshot or on
// the channel, never both. A previously attached subscriber is displaced: its
// channel is closed and the new one takes over.
//
// For an already-closed stream the returned channel is closed immediately and
// the terminal event is part of the replay.
func (x *Stream) Attach() (replay []model.LogEvent, live <-chan model.LogEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()

	replay = append([]model.LogEvent(nil), x.history...)

	if x.sub != nil {
		close(x.sub)
		x.sub = nil
	}

	ch := make(chan model.LogEvent, subscriberBuffer)
	if x.closed {
		close(ch)
		return replay, ch
	}

	x.sub = ch
	return replay, ch
}

// Detach removes the subscriber if it is still the attached one. Safe to call
// after Close.
func (x *Stream) Detach(live <-chan model.LogEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.sub != nil && x.sub == live {
		close(x.sub)
		x.sub = nil
	}
}
