// Package progress streams compile status events to interested listeners,
// typically the editor front-end over socket.io.
package progress

import (
	"context"
	"sync"
)

// EventName is the socket.io event compile status is emitted under.
const EventName = "compile-status"

// Stage is a step of the compile pipeline.
type Stage string

const (
	StageLoad     Stage = "load"
	StageGenerate Stage = "generate"
	StageWrite    Stage = "write"
	StageNotebook Stage = "notebook"
	StageUpload   Stage = "upload"
	StageDone     Stage = "done"
	StageFailed   Stage = "failed"
)

// Event reports that File reached Stage.
type Event struct {
	Stage   Stage
	File    string
	Message string
}

// Payload is the event body sent over the wire.
func (e Event) Payload() map[string]any {
	return map[string]any{
		"stage":   string(e.Stage),
		"file":    e.File,
		"message": e.Message,
	}
}

// Reporter receives compile status events. Report never fails the pipeline;
// delivery problems are logged by the implementation.
type Reporter interface {
	Report(ctx context.Context, ev Event)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Report(context.Context, Event) {}
func (Nop) Close() error                  { return nil }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Stages returns the stage of every recorded event in order.
func (r *Recorder) Stages() []Stage {
	events := r.Events()
	stages := make([]Stage, len(events))
	for i, ev := range events {
		stages[i] = ev.Stage
	}
	return stages
}
