package lifecycle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"leaflog/internal/database"
	"leaflog/internal/model"
)

type fakeStore struct {
	plants  map[string]model.Plant
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{plants: map[string]model.Plant{}}
}

func (f *fakeStore) PlantInsert(_ context.Context, p model.Plant) (string, error) {
	id := primitive.NewObjectID()
	p.ID = id
	f.plants[id.Hex()] = p
	return id.Hex(), nil
}

func (f *fakeStore) PlantFindOne(_ context.Context, ownerID primitive.ObjectID, plantID string) (model.Plant, error) {
	p, ok := f.plants[plantID]
	if !ok || p.OwnerID != ownerID {
		return model.Plant{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func (f *fakeStore) PlantLifecycleUpdate(_ context.Context, p model.Plant) error {
	if _, ok := f.plants[p.ID.Hex()]; !ok {
		return database.ErrNoDocumentsModified
	}
	f.plants[p.ID.Hex()] = p
	f.updates++
	return nil
}

func (f *fakeStore) PlantDelete(_ context.Context, _ primitive.ObjectID, plantID string) error {
	delete(f.plants, plantID)
	return nil
}

var testOwner = primitive.NewObjectID()

func testStore(db *fakeStore, now time.Time) Store {
	return Store{
		DB:      db,
		OwnerID: testOwner,
		Now:     func() time.Time { return now },
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func validCreateInput() CreatePlantInput {
	return CreatePlantInput{
		Name:            "Monstera",
		Date:            date("2024-01-01"),
		StartType:       model.StartWholePlant,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionPurchased,
		Price:           12.50,
	}
}

func TestCreatePlant(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-01"))

	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.Equal(t, testOwner, p.OwnerID)
	assert.Equal(t, model.StatusAlive, p.Status)
	assert.Empty(t, p.Events)
	assert.NotNil(t, p.Events)
	assert.Equal(t, 1, CurrentAttempt(p.Events))

	stored, ok := db.plants[p.ID.Hex()]
	require.True(t, ok)
	assert.Equal(t, "Monstera", stored.Name)
}

func TestCreatePlantValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreatePlantInput)
	}{
		{"no name and no image", func(in *CreatePlantInput) { in.Name = "" }},
		{"no date", func(in *CreatePlantInput) { in.Date = time.Time{} }},
		{"bad start type", func(in *CreatePlantInput) { in.StartType = "spore" }},
		{"bad location", func(in *CreatePlantInput) { in.Location = "greenhouse" }},
		{"bad acquisition type", func(in *CreatePlantInput) { in.AcquisitionType = "stolen" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(newFakeStore(), date("2024-01-01"))
			in := validCreateInput()
			tt.mutate(&in)
			_, err := s.CreatePlant(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreatePlantWithPhotoOnly(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-01"))
	in := validCreateInput()
	in.Name = ""
	in.Image = "data:image/jpeg;base64,YWJj"

	p, err := s.CreatePlant(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Image, p.Image)
	assert.Equal(t, p.Date, p.LastPhotoUpdate)
}

func TestCreatePlantStripsProvenance(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-01"))
	in := validCreateInput()
	in.AcquisitionType = model.AcquisitionGifted
	in.GiftFrom = "Ana"
	in.Price = 99
	in.RescuedFrom = "the street"

	p, err := s.CreatePlant(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.GiftFrom)
	assert.Zero(t, p.Price)
	assert.Empty(t, p.RescuedFrom)
}

func TestAppendEventWatering(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-05"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{
		Type: model.EventWatering,
		Date: date("2024-01-05"),
	})
	require.NoError(t, err)

	require.Len(t, p.Events, 1)
	assert.Equal(t, model.EventWatering, p.Events[0].Type)
	assert.Equal(t, 1, p.Events[0].Attempt)
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-01-05")), p.LastWatered)

	stored := db.plants[p.ID.Hex()]
	assert.Equal(t, p.LastWatered, stored.LastWatered)
}

func TestAppendEventDefaultsDateToNow(t *testing.T) {
	now := date("2024-02-10")
	s := testStore(newFakeStore(), now)
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventNote, Note: "repotted soon?"})
	require.NoError(t, err)
	assert.Equal(t, primitive.NewDateTimeFromTime(now), p.Events[0].Date)
}

func TestAppendEventValidation(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-01"))
	_, err := s.AppendEvent(context.Background(), primitive.NewObjectID().Hex(), EventInput{Type: "party"})
	assert.ErrorIs(t, err, ErrValidation)

	bad := model.Status("zombie")
	_, err = s.AppendEvent(context.Background(), primitive.NewObjectID().Hex(), EventInput{
		Type:         model.EventNote,
		StatusChange: &bad,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppendEventPlantNotFound(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-01"))
	_, err := s.AppendEvent(context.Background(), primitive.NewObjectID().Hex(), EventInput{Type: model.EventWatering})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendEventPhotoDeduplicatesGallery(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	img := "data:image/jpeg;base64,Zm9v"
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{
		Type: model.EventPhoto, Date: date("2024-01-08"), ImageData: img,
	})
	require.NoError(t, err)
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{
		Type: model.EventPhoto, Date: date("2024-01-09"), ImageData: img,
	})
	require.NoError(t, err)

	assert.Len(t, p.Events, 2, "both photo events stay in the log")
	assert.Len(t, p.Gallery, 1, "the same image is stored once")
	assert.Equal(t, img, p.Image)
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-01-09")), p.LastPhotoUpdate)
}

func TestAppendEventStatusChange(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	deceased := model.StatusDeceased
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{
		Type:         model.EventDeceased,
		Date:         date("2024-01-10"),
		StatusChange: &deceased,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeceased, p.Status)
}

func TestAppendEventLogFull(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-10"))
	s.MaxEventsPerPlant = 2
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering})
		require.NoError(t, err)
	}
	_, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering})
	assert.ErrorIs(t, err, ErrEventLogFull)

	stored := db.plants[p.ID.Hex()]
	assert.Len(t, stored.Events, 2, "the rejected event must not be written")
}

func TestRemoveEventRecomputesLastWatered(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering, Date: date("2024-01-03")})
	require.NoError(t, err)
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering, Date: date("2024-01-08")})
	require.NoError(t, err)
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-01-08")), p.LastWatered)

	p, err = s.RemoveEvent(context.Background(), p.ID.Hex(), p.Events[0].ID)
	require.NoError(t, err)
	require.Len(t, p.Events, 1)
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-01-03")), p.LastWatered)

	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventNote, Note: "n"})
	require.NoError(t, err)
	p, err = s.RemoveEvent(context.Background(), p.ID.Hex(), p.Events[0].ID)
	require.NoError(t, err)
	p, err = s.RemoveEvent(context.Background(), p.ID.Hex(), p.Events[0].ID)
	require.NoError(t, err)
	assert.Zero(t, p.LastWatered, "no watering events left")
}

func TestRemoveEventUnknownIDIsNoOp(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	before := db.updates
	got, err := s.RemoveEvent(context.Background(), p.ID.Hex(), "nope")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, before, db.updates, "a miss must not write")
}

func TestRemoveEventKeepsGalleryImage(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	img := "data:image/jpeg;base64,Zm9v"
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{
		Type: model.EventPhoto, Date: date("2024-01-09"), ImageData: img,
	})
	require.NoError(t, err)

	p, err = s.RemoveEvent(context.Background(), p.ID.Hex(), p.Events[0].ID)
	require.NoError(t, err)
	assert.Empty(t, p.Events)
	assert.Len(t, p.Gallery, 1, "gallery entries are history, not tied to the event")
	assert.Equal(t, img, p.Image)
}

func TestDeletePlant(t *testing.T) {
	db := newFakeStore()
	s := testStore(db, date("2024-01-10"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, s.DeletePlant(context.Background(), p.ID.Hex()))
	assert.Empty(t, db.plants)

	assert.NoError(t, s.DeletePlant(context.Background(), p.ID.Hex()), "deleting a missing plant is a no-op")
}

func TestCurrentAttempt(t *testing.T) {
	assert.Equal(t, 1, CurrentAttempt(nil))
	assert.Equal(t, 1, CurrentAttempt([]model.Event{{Attempt: 0}}))
	assert.Equal(t, 3, CurrentAttempt([]model.Event{{Attempt: 1}, {Attempt: 3}, {Attempt: 2}}))
}

func TestSortEventsTieBreak(t *testing.T) {
	d := primitive.NewDateTimeFromTime(date("2024-01-05"))
	events := []model.Event{
		{ID: "100", Date: d},
		{ID: "300", Date: d},
		{ID: "200", Date: primitive.NewDateTimeFromTime(date("2024-01-06"))},
	}
	SortEvents(events)
	assert.Equal(t, "200", events[0].ID, "newest date first")
	assert.Equal(t, "300", events[1].ID, "date ties break by id descending")
	assert.Equal(t, "100", events[2].ID)
}

func TestNewEventIDAvoidsCollisions(t *testing.T) {
	at := date("2024-01-05")
	first := NewEventID(nil, at)
	second := NewEventID([]model.Event{{ID: first}}, at)
	assert.NotEqual(t, first, second)
}

func TestStartNewAttempt(t *testing.T) {
	db := newFakeStore()
	now := date("2024-06-01")
	s := testStore(db, now)

	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering, Date: date("2024-01-05")})
	require.NoError(t, err)

	p, err = s.StartNewAttempt(context.Background(), p.ID.Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartCutting,
		Location:        model.LocationOutdoor,
		AcquisitionType: model.AcquisitionGifted,
		GiftFrom:        "Marta",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusAlive, p.Status)
	assert.Equal(t, 2, CurrentAttempt(p.Events))
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-03-01")), p.Date)
	assert.Equal(t, model.StartCutting, p.StartType)
	assert.Equal(t, "Marta", p.GiftFrom)
	assert.Zero(t, p.Price, "previous attempt's provenance is stripped")

	require.Len(t, p.Events, 3)
	var ended, revived *model.Event
	for i := range p.Events {
		switch p.Events[i].Type {
		case model.EventDeceased:
			ended = &p.Events[i]
		case model.EventRevived:
			revived = &p.Events[i]
		}
	}
	require.NotNil(t, ended)
	require.NotNil(t, revived)
	assert.Equal(t, 1, ended.Attempt)
	assert.Equal(t, primitive.NewDateTimeFromTime(now), ended.Date)
	assert.Equal(t, "Fin del intento #1 (deceased)", ended.Note)
	assert.Equal(t, 2, revived.Attempt)
	assert.Equal(t, primitive.NewDateTimeFromTime(date("2024-03-01")), revived.Date)
	assert.Equal(t, "Inicio del intento #2", revived.Note)

	assert.True(t, strings.HasPrefix(p.Notes, "Intento anterior (#1)"), "notes: %q", p.Notes)
	assert.Contains(t, p.Notes, "Estado final: deceased")
	assert.Contains(t, p.Notes, "2024-01-01")
}

func TestStartNewAttemptSnapshotsOldNotes(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-06-01"))
	in := validCreateInput()
	in.Notes = "likes bright shade"
	p, err := s.CreatePlant(context.Background(), in)
	require.NoError(t, err)

	p, err = s.StartNewAttempt(context.Background(), p.ID.Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartSeed,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionRescued,
		RescuedFrom:     "office bin",
	})
	require.NoError(t, err)
	assert.Contains(t, p.Notes, "Notas: likes bright shade")
	assert.Equal(t, "office bin", p.RescuedFrom)
}

func TestStartNewAttemptEndStatus(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-06-01"))
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = s.StartNewAttempt(context.Background(), p.ID.Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartWholePlant,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionPurchased,
		EndStatus:       model.StatusAlive,
	})
	assert.ErrorIs(t, err, ErrValidation, "an attempt cannot end alive")

	got, err := s.StartNewAttempt(context.Background(), p.ID.Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartWholePlant,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionPurchased,
		EndStatus:       model.StatusExchanged,
		EndNote:         "traded for a hoya",
	})
	require.NoError(t, err)
	assert.Contains(t, got.Notes, "Estado final: exchanged")
	var ended *model.Event
	for i := range got.Events {
		if got.Events[i].Type == model.EventDeceased {
			ended = &got.Events[i]
		}
	}
	require.NotNil(t, ended)
	assert.Equal(t, "traded for a hoya", ended.Note)
}

func TestStartNewAttemptValidation(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-06-01"))
	_, err := s.StartNewAttempt(context.Background(), primitive.NewObjectID().Hex(), NewAttemptInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStartNewAttemptNotFound(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-06-01"))
	_, err := s.StartNewAttempt(context.Background(), primitive.NewObjectID().Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartWholePlant,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionPurchased,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartNewAttemptBypassesEventLogBound(t *testing.T) {
	s := testStore(newFakeStore(), date("2024-06-01"))
	s.MaxEventsPerPlant = 1
	p, err := s.CreatePlant(context.Background(), validCreateInput())
	require.NoError(t, err)
	p, err = s.AppendEvent(context.Background(), p.ID.Hex(), EventInput{Type: model.EventWatering})
	require.NoError(t, err)

	p, err = s.StartNewAttempt(context.Background(), p.ID.Hex(), NewAttemptInput{
		Date:            date("2024-03-01"),
		StartType:       model.StartWholePlant,
		Location:        model.LocationIndoor,
		AcquisitionType: model.AcquisitionPurchased,
	})
	require.NoError(t, err, "a full log must not wedge a revival")
	assert.Len(t, p.Events, 3)
}
