package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// EventType is the closed set of care/lifecycle occurrences that can be
// logged on a plant.
type EventType string

const (
	EventWatering     EventType = "watering"
	EventPruning      EventType = "pruning"
	EventRepotting    EventType = "repotting"
	EventPhoto        EventType = "photo"
	EventPest         EventType = "pest"
	EventFertilizing  EventType = "fertilizing"
	EventNote         EventType = "note"
	EventRevived      EventType = "revived"
	EventDeceased     EventType = "deceased"
	EventCuttingTaken EventType = "cutting-taken"
	EventBloom        EventType = "bloom"
)

func (t EventType) Valid() bool {
	switch t {
	case EventWatering, EventPruning, EventRepotting, EventPhoto, EventPest,
		EventFertilizing, EventNote, EventRevived, EventDeceased,
		EventCuttingTaken, EventBloom:
		return true
	}
	return false
}

// Event is one entry of the event log embedded in a Plant document.
// IDs are capture-timestamp-based, see lifecycle.NewEventID.
type Event struct {
	ID      string             `bson:"id" json:"id"`
	Type    EventType          `bson:"type" json:"type"`
	Date    primitive.DateTime `bson:"date" json:"date"`
	Note    string             `bson:"note,omitempty" json:"note,omitempty"`
	Attempt int                `bson:"attempt" json:"attempt"`
}
