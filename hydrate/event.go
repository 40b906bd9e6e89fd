package hydrate

import (
	"time"

	"github.com/google/uuid"
)

// Events is an alias type for a slice of Event
type Events = []Event

// Event carries a source tag and the nested context tree to be hydrated.
//
// Only Context is mutated by this package; every other field is read-only to
// it. Events are supplied by the caller and returned from Load for chaining,
// no Event is created or destroyed here.
type Event struct {
	ID         uuid.UUID
	Source     SourceString
	OccurredAt time.Time
	Context    Value
}

// BuildEvent is a factory method for Event.
//
// It assigns a fresh time-ordered UUID and stamps the current time.
// Returns an error if the source is empty.
func BuildEvent(source SourceString, context Value) (Event, error) {
	if source == "" {
		return Event{}, ErrEmptyEventSource
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:         id,
		Source:     source,
		OccurredAt: time.Now(),
		Context:    context,
	}, nil
}

// Medium describes one output target. Its render group scopes which hint
// declarations apply when events are loaded for it.
type Medium struct {
	Name        string
	RenderGroup RenderGroupString
}
