package provisioning

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives progress output and structured events of a run.
type Observer interface {
	// Printf writes a free-form progress line.
	Printf(format string, v ...any)

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns an Observer that adds fields to every event.
	WithFields(fields map[string]string) Observer
}

// Event is one structured run event.
type Event struct {
	Type      EventType
	Phase     string // cleanup or main
	Stage     string // Step name, if any
	Resource  string // File path or unit name, if any
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType names an Event.
type EventType string

const (
	EventPhaseStarted    EventType = "phase.started"
	EventPhaseCompleted  EventType = "phase.completed"
	EventStageStarted    EventType = "stage.started"
	EventStageCompleted  EventType = "stage.completed"
	EventStageFailed     EventType = "stage.failed"
	EventStageSkipped    EventType = "stage.skipped"
	EventStateTransition EventType = "state.transition"

	EventResourceUnchanged EventType = "resource.unchanged"
	EventResourceUpdated   EventType = "resource.updated"
)

// LogObserver writes events to a logr.Logger. Stage starts are logged at
// V(1); failures through Error.
type LogObserver struct {
	log    logr.Logger
	fields map[string]string
}

// NewLogObserver returns an Observer writing to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log, fields: map[string]string{}}
}

// Printf implements Observer.
func (o *LogObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *LogObserver) Event(e Event) {
	kv := []any{"event", string(e.Type)}
	if e.Phase != "" {
		kv = append(kv, "phase", e.Phase)
	}
	if e.Stage != "" {
		kv = append(kv, "stage", e.Stage)
	}
	if e.Resource != "" {
		kv = append(kv, "resource", e.Resource)
	}
	kv = append(kv, o.keysAndValues(e.Fields)...)

	switch e.Type {
	case EventStageFailed:
		o.log.Error(nil, e.Message, kv...)
	case EventStageStarted, EventResourceUnchanged:
		o.log.V(1).Info(e.Message, kv...)
	default:
		o.log.Info(e.Message, kv...)
	}
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	merged := maps.Clone(o.fields)
	maps.Copy(merged, fields)
	return &LogObserver{log: o.log, fields: merged}
}

// keysAndValues merges context fields under event fields, sorted by key
// so output is stable.
func (o *LogObserver) keysAndValues(extra map[string]string) []any {
	all := maps.Clone(o.fields)
	maps.Copy(all, extra)

	kv := make([]any, 0, 2*len(all))
	for _, k := range slices.Sorted(maps.Keys(all)) {
		kv = append(kv, k, all[k])
	}
	return kv
}

func logPhaseStart(o Observer, phase string, steps int) {
	o.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: fmt.Sprintf("starting %s phase with %d stages", phase, steps),
	})
}

func logPhaseComplete(o Observer, phase string, d time.Duration) {
	o.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("%s phase completed in %v", phase, d.Round(time.Millisecond)),
	})
}

func logResource(o Observer, phase, stage, resource string, changed bool) {
	e := Event{
		Type:     EventResourceUnchanged,
		Phase:    phase,
		Stage:    stage,
		Resource: resource,
		Message:  "already up to date",
	}
	if changed {
		e.Type = EventResourceUpdated
		e.Message = "updated"
	}
	o.Event(e)
}
