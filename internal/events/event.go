// Package events provides the pub/sub bus carrying session change
// notifications to consumers such as the HTTP API or a UI.
package events

import "time"

// Event types published by the session engine.
const (
	TypeQueryStarted      = "query.started"
	TypeCollectionChanged = "collection.changed"
	TypeTitleUpdated      = "title.updated"
	TypeViewUpdated       = "view.updated"
)

// Event is the base interface all events implement.
type Event interface {
	EventType() string
	EntityID() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityID() string      { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent creates a BaseEvent with the current timestamp.
func NewBaseEvent(eventType, entityID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}

// QueryStarted is published when a new query generation begins. All
// in-flight work from earlier generations is invalidated at this point.
type QueryStarted struct {
	BaseEvent
	Generation uint64   `json:"generation"`
	Usernames  []string `json:"usernames"`
}

// NewQueryStarted creates a QueryStarted event.
func NewQueryStarted(generation uint64, usernames []string) QueryStarted {
	return QueryStarted{
		BaseEvent:  NewBaseEvent(TypeQueryStarted, ""),
		Generation: generation,
		Usernames:  usernames,
	}
}

// CollectionChanged is published when the merged collection is replaced.
type CollectionChanged struct {
	BaseEvent
	Generation uint64 `json:"generation"`
	Titles     int    `json:"titles"`
}

// NewCollectionChanged creates a CollectionChanged event.
func NewCollectionChanged(generation uint64, titles int) CollectionChanged {
	return CollectionChanged{
		BaseEvent:  NewBaseEvent(TypeCollectionChanged, ""),
		Generation: generation,
		Titles:     titles,
	}
}

// TitleUpdated is published when one title's availability state resolves.
// EntityID carries the title ID.
type TitleUpdated struct {
	BaseEvent
	Generation uint64 `json:"generation"`
	Status     string `json:"status"`
}

// NewTitleUpdated creates a TitleUpdated event for the given title.
func NewTitleUpdated(titleID string, generation uint64, status string) TitleUpdated {
	return TitleUpdated{
		BaseEvent:  NewBaseEvent(TypeTitleUpdated, titleID),
		Generation: generation,
		Status:     status,
	}
}

// ViewUpdated is published after a debounced recompute of the ranked view.
type ViewUpdated struct {
	BaseEvent
	Generation uint64 `json:"generation"`
	Visible    int    `json:"visible"`
}

// NewViewUpdated creates a ViewUpdated event.
func NewViewUpdated(generation uint64, visible int) ViewUpdated {
	return ViewUpdated{
		BaseEvent:  NewBaseEvent(TypeViewUpdated, ""),
		Generation: generation,
		Visible:    visible,
	}
}
