package stream_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/stream"
)

func TestStreamReplayThenLive(t *testing.T) {
	s := stream.New("test-1")

	s.Emit(model.EventTypeStatus, map[string]any{"status": "QUEUED"})
	s.Emit(model.EventTypeStep, map[string]any{"step": "resolve_source"})

	replay, live := s.Attach()
	gt.A(t, replay).Length(2)
	gt.V(t, replay[0].Type).Equal(model.EventTypeStatus)

	s.Emit(model.EventTypeLog, map[string]any{"line": "scanning"})
	s.Close(types.JobStatusSucceeded, nil)

	var received []model.LogEvent
	for event := range live {
		received = append(received, event)
	}

	// live events never duplicate the replayed history
	gt.A(t, received).Length(2)
	gt.V(t, received[0].Type).Equal(model.EventTypeLog)
	gt.V(t, received[1].Type).Equal(model.EventTypeTerminal)
	gt.V(t, received[1].Data["status"]).Equal("SUCCEEDED")
}

func TestStreamTerminalExactlyOnce(t *testing.T) {
	s := stream.New("test-2")

	s.Close(types.JobStatusFailed, map[string]any{"test_id": "test-2"})
	s.Close(types.JobStatusSucceeded, nil)
	s.Emit(model.EventTypeLog, map[string]any{"line": "after close"})

	history := s.History()
	gt.A(t, history).Length(1)
	gt.V(t, history[0].Type).Equal(model.EventTypeTerminal)
	gt.V(t, history[0].Data["status"]).Equal("FAILED")
	gt.True(t, s.Closed())
}

func TestStreamAttachAfterClose(t *testing.T) {
	s := stream.New("test-3")
	s.Emit(model.EventTypeStatus, map[string]any{"status": "RUNNING"})
	s.Close(types.JobStatusSucceeded, nil)

	replay, live := s.Attach()
	gt.A(t, replay).Length(2)
	gt.V(t, replay[1].Type).Equal(model.EventTypeTerminal)

	// the live channel of a finished stream is already closed
	_, open := <-live
	gt.False(t, open)
}

func TestStreamDisplacesPreviousSubscriber(t *testing.T) {
	s := stream.New("test-4")

	_, first := s.Attach()
	_, second := s.Attach()

	// first subscriber channel is closed on displacement
	_, open := <-first
	gt.False(t, open)

	s.Emit(model.EventTypeLog, map[string]any{"line": "hello"})

	event := <-second
	gt.V(t, event.Type).Equal(model.EventTypeLog)

	s.Detach(second)
	s.Emit(model.EventTypeLog, map[string]any{"line": "dropped"})

	// detached subscribers receive nothing further; history still grows
	gt.A(t, s.History()).Length(2)
}

func TestManager(t *testing.T) {
	mgr := stream.NewManager()

	s := mgr.Register("test-5")
	gt.V(t, s.ID()).Equal(types.TestID("test-5"))

	got, ok := mgr.Get("test-5")
	gt.True(t, ok)
	gt.V(t, got).Equal(s)

	_, ok = mgr.Get("unknown")
	gt.False(t, ok)

	mgr.Remove("test-5")
	_, ok = mgr.Get("test-5")
	gt.False(t, ok)
}
