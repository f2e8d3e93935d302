package analytics

import (
	"sync"
	"time"
)

// Props are free-form event properties
type Props map[string]interface{}

// Event is a named analytics event for one visitor
type Event struct {
	Name       string    `json:"event"`
	DistinctID string    `json:"distinct_id"`
	Properties Props     `json:"properties,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Tracker receives events. Capture must not block, fail or panic into the caller.
type Tracker interface {
	Capture(e Event)
	Close() error
}

// Nop drops every event. Used when no analytics key is configured.
type Nop struct{}

func (Nop) Capture(Event) {}
func (Nop) Close() error  { return nil }

// TrackerFunc adapts a function to a Tracker
type TrackerFunc func(e Event)

func (f TrackerFunc) Capture(e Event) {
	defer func() { _ = recover() }()
	f(e)
}

func (f TrackerFunc) Close() error { return nil }

// Multi fans events out to several trackers
type Multi []Tracker

func (m Multi) Capture(e Event) {
	for _, t := range m {
		t.Capture(e)
	}
}

func (m Multi) Close() error {
	var first error
	for _, t := range m {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder keeps events in memory. Used by tests and the CLI dry run.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Capture(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything captured so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns captured event names in order
func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// Find returns the first captured event with the given name
func (r *Recorder) Find(name string) (Event, bool) {
	for _, e := range r.Events() {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}
