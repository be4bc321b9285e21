// Package lifecycle owns per-plant state transitions and the embedded event
// log: creating plants, appending and removing typed events, deriving the
// current attempt number and keeping the denormalized display fields
// (last-watered, primary image) in sync.
//
// All mutations are read-modify-write against the store snapshot they load
// themselves: last write wins at the document level, with no optimistic
// locking and no rollback of a failed write.
package lifecycle

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leaflog/internal/model"
)

const DefaultMaxEventsPerPlant = 500

// PlantStore is the slice of the document-store client the lifecycle store
// needs. database.Database satisfies it.
type PlantStore interface {
	PlantInsert(ctx context.Context, p model.Plant) (string, error)
	PlantFindOne(ctx context.Context, ownerID primitive.ObjectID, plantID string) (model.Plant, error)
	PlantLifecycleUpdate(ctx context.Context, p model.Plant) error
	PlantDelete(ctx context.Context, ownerID primitive.ObjectID, plantID string) error
}

// Store performs lifecycle operations for one acting user. Both the store
// handle and the owner are injected so nothing is read from ambient state.
type Store struct {
	DB                PlantStore
	OwnerID           primitive.ObjectID
	MaxEventsPerPlant int
	Now               func() time.Time // nil means time.Now
}

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Store) maxEvents() int {
	if s.MaxEventsPerPlant > 0 {
		return s.MaxEventsPerPlant
	}
	return DefaultMaxEventsPerPlant
}

type CreatePlantInput struct {
	Name            string
	Type            string
	Notes           string
	Date            time.Time
	StartType       model.StartType
	Location        model.Location
	AcquisitionType model.AcquisitionType
	Price           float64
	GiftFrom        string
	ExchangeSource  string
	RescuedFrom     string
	Image           string
}

// CreatePlant inserts a new alive plant with an empty event log, implicitly
// on attempt 1. A name or a photo, plus an acquisition date, are required.
func (s Store) CreatePlant(ctx context.Context, in CreatePlantInput) (model.Plant, error) {
	if in.Name == "" && in.Image == "" {
		return model.Plant{}, errors.Wrap(ErrValidation, "a name or a photo is required")
	}
	if in.Date.IsZero() {
		return model.Plant{}, errors.Wrap(ErrValidation, "an acquisition date is required")
	}
	if !in.StartType.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid start type: %q", in.StartType)
	}
	if !in.Location.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid location: %q", in.Location)
	}
	if !in.AcquisitionType.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid acquisition type: %q", in.AcquisitionType)
	}

	p := model.Plant{
		OwnerID:         s.OwnerID,
		Name:            in.Name,
		Type:            in.Type,
		Notes:           in.Notes,
		Status:          model.StatusAlive,
		Date:            primitive.NewDateTimeFromTime(in.Date),
		StartType:       in.StartType,
		Location:        in.Location,
		AcquisitionType: in.AcquisitionType,
		Price:           in.Price,
		GiftFrom:        in.GiftFrom,
		ExchangeSource:  in.ExchangeSource,
		RescuedFrom:     in.RescuedFrom,
		Image:           in.Image,
		Gallery:         []model.GalleryImage{},
		Events:          []model.Event{},
	}
	p.StripProvenance()
	if p.Image != "" {
		p.LastPhotoUpdate = p.Date
	}

	id, err := s.DB.PlantInsert(ctx, p)
	if err != nil {
		return model.Plant{}, wrapStore(err, "creating plant")
	}
	p.ID, err = primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Plant{}, errors.Wrapf(err, "error creating ObjectID from hex: %s", id)
	}
	return p, nil
}

type EventInput struct {
	Type model.EventType
	Date time.Time
	Note string

	// ImageData is transient: it is never persisted on the event itself but
	// translated into image/gallery updates on the plant.
	ImageData string

	// StatusChange optionally overwrites the plant status alongside the
	// event, used by the deceased/exchanged quick actions.
	StatusChange *model.Status
}

// AppendEvent logs one occurrence on the plant, tagged with the attempt
// derived from the persisted log, and persists plant and log in a single
// update. Last write wins; there is no optimistic-concurrency check.
func (s Store) AppendEvent(ctx context.Context, plantID string, in EventInput) (model.Plant, error) {
	if !in.Type.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid event type: %q", in.Type)
	}
	if in.StatusChange != nil && !in.StatusChange.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid status: %q", *in.StatusChange)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	p, err := s.DB.PlantFindOne(ctx, s.OwnerID, plantID)
	if err != nil {
		return model.Plant{}, wrapStore(err, "loading plant "+plantID)
	}
	if len(p.Events) >= s.maxEvents() {
		return model.Plant{}, errors.Wrapf(ErrEventLogFull, "plant %s has %d events", plantID, len(p.Events))
	}

	attempt := CurrentAttempt(p.Events)
	ev := model.Event{
		ID:      NewEventID(p.Events, s.now()),
		Type:    in.Type,
		Date:    primitive.NewDateTimeFromTime(date),
		Note:    in.Note,
		Attempt: attempt,
	}
	p.Events = append([]model.Event{ev}, p.Events...)
	SortEvents(p.Events)

	if in.Type == model.EventPhoto && in.ImageData != "" {
		if !galleryContains(p.Gallery, in.ImageData) {
			p.Gallery = append([]model.GalleryImage{{
				ImageURL: in.ImageData,
				Date:     ev.Date,
				Attempt:  attempt,
			}}, p.Gallery...)
		}
		p.Image = in.ImageData
		p.LastPhotoUpdate = ev.Date
	}
	if in.StatusChange != nil {
		p.Status = *in.StatusChange
	}
	recomputeLastWatered(&p)

	if err := s.DB.PlantLifecycleUpdate(ctx, p); err != nil {
		return model.Plant{}, wrapStore(err, "saving plant "+plantID)
	}
	return p, nil
}

// RemoveEvent deletes one event by id and re-derives the denormalized
// fields from the remaining log. Removing an id that is not in the log is a
// harmless no-op and performs no write.
func (s Store) RemoveEvent(ctx context.Context, plantID string, eventID string) (model.Plant, error) {
	p, err := s.DB.PlantFindOne(ctx, s.OwnerID, plantID)
	if err != nil {
		return model.Plant{}, wrapStore(err, "loading plant "+plantID)
	}

	remaining, removed := eventsWithout(p.Events, eventID)
	if !removed {
		return p, nil
	}
	p.Events = remaining
	recomputeLastWatered(&p)
	refreshImageFromGallery(&p)

	if err := s.DB.PlantLifecycleUpdate(ctx, p); err != nil {
		return model.Plant{}, wrapStore(err, "saving plant "+plantID)
	}
	return p, nil
}

// DeletePlant removes the plant together with its embedded event log in one
// document delete. A missing plant id is a no-op.
func (s Store) DeletePlant(ctx context.Context, plantID string) error {
	if err := s.DB.PlantDelete(ctx, s.OwnerID, plantID); err != nil {
		return wrapStore(err, "deleting plant "+plantID)
	}
	return nil
}
