package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leaflog/internal/model"
)

func (db Database) PlantInsert(ctx context.Context, p model.Plant) (id string, err error) {
	if p.Gallery == nil {
		p.Gallery = []model.GalleryImage{}
	}
	if p.Events == nil {
		p.Events = []model.Event{}
	}
	p.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	p.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionPlants).InsertOne(ctx, p)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting Plant with name: %s", p.Name)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) PlantFindOne(ctx context.Context, ownerID primitive.ObjectID, plantID string) (model.Plant, error) {
	var p model.Plant
	objID, err := primitive.ObjectIDFromHex(plantID)
	if err != nil {
		return p, errors.Wrapf(err, "error creating ObjectID from hex: %s", plantID)
	}
	err = db.Collection(CollectionPlants).FindOne(ctx, bson.M{"_id": objID, "owner_id": ownerID}).Decode(&p)
	return p, errors.Wrapf(err, "error finding Plant with ID: %s", plantID)
}

func (db Database) PlantsFindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]model.Plant, error) {
	var ps []model.Plant
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionPlants).Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Plants for OwnerID: %s", ownerID.Hex())
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrapf(err, "error getting Plants from cursor for OwnerID: %s", ownerID.Hex())
	}
	return ps, nil
}

func (db Database) PlantsFindAll(ctx context.Context) ([]model.Plant, error) {
	var ps []model.Plant
	cur, err := db.Collection(CollectionPlants).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Plants")
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrap(err, "error getting all Plants from cursor")
	}
	return ps, nil
}

// PlantLifecycleUpdate persists every field a lifecycle operation may touch
// in one $set. Lifecycle consistency relies on this being a single call, so
// never split it.
func (db Database) PlantLifecycleUpdate(ctx context.Context, p model.Plant) error {
	res, err := db.Collection(CollectionPlants).UpdateOne(
		ctx,
		bson.M{"_id": p.ID, "owner_id": p.OwnerID},
		bson.M{"$set": bson.M{
			"name":              p.Name,
			"type":              p.Type,
			"notes":             p.Notes,
			"status":            p.Status,
			"date":              p.Date,
			"start_type":        p.StartType,
			"location":          p.Location,
			"acquisition_type":  p.AcquisitionType,
			"price":             p.Price,
			"gift_from":         p.GiftFrom,
			"exchange_source":   p.ExchangeSource,
			"rescued_from":      p.RescuedFrom,
			"image":             p.Image,
			"gallery":           p.Gallery,
			"last_photo_update": p.LastPhotoUpdate,
			"last_watered":      p.LastWatered,
			"events":            p.Events,
			"updated_at":        primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Plant with ID: %s", p.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Plant not found when updating, ID: %s", p.ID.Hex())
	}
	return nil
}

// PlantDelete removes the plant and its embedded event log in one call.
// Deleting an id that no longer exists is a no-op, not an error.
func (db Database) PlantDelete(ctx context.Context, ownerID primitive.ObjectID, plantID string) error {
	objID, err := primitive.ObjectIDFromHex(plantID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", plantID)
	}
	_, err = db.Collection(CollectionPlants).DeleteOne(ctx, bson.M{"_id": objID, "owner_id": ownerID})
	return errors.Wrapf(err, "error deleting Plant with ID: %s", plantID)
}
