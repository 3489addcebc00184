package model

import "time"

type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeStep   EventType = "step"
	EventTypeLog    EventType = "log"
	EventTypeError  EventType = "error"

	// EventTypeTerminal is reserved for the final event of a stream. Emitting
	// it through Close marks the stream as finished.
	EventTypeTerminal EventType = "terminal"
)

type LogEvent struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
