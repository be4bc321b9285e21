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

func (db Database) WishlistItemInsert(ctx context.Context, wi model.WishlistItem) (id string, err error) {
	wi.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	wi.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionWishlistItems).InsertOne(ctx, wi)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting WishlistItem with name: %s", wi.Name)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) WishlistItemFindOne(ctx context.Context, ownerID primitive.ObjectID, itemID string) (model.WishlistItem, error) {
	var wi model.WishlistItem
	objID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return wi, errors.Wrapf(err, "error creating ObjectID from hex: %s", itemID)
	}
	err = db.Collection(CollectionWishlistItems).FindOne(ctx, bson.M{"_id": objID, "owner_id": ownerID}).Decode(&wi)
	return wi, errors.Wrapf(err, "error finding WishlistItem with ID: %s", itemID)
}

func (db Database) WishlistItemsFindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]model.WishlistItem, error) {
	var wis []model.WishlistItem
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionWishlistItems).Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find WishlistItems for OwnerID: %s", ownerID.Hex())
	}
	if err = cur.All(ctx, &wis); err != nil {
		return nil, errors.Wrapf(err, "error getting WishlistItems from cursor for OwnerID: %s", ownerID.Hex())
	}
	return wis, nil
}

func (db Database) WishlistItemUpdate(ctx context.Context, wi model.WishlistItem) error {
	res, err := db.Collection(CollectionWishlistItems).UpdateOne(
		ctx,
		bson.M{"_id": wi.ID, "owner_id": wi.OwnerID},
		bson.M{"$set": bson.M{
			"name":       wi.Name,
			"notes":      wi.Notes,
			"image":      wi.Image,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating WishlistItem with ID: %s", wi.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "WishlistItem not found when updating, ID: %s", wi.ID.Hex())
	}
	return nil
}

func (db Database) WishlistItemDelete(ctx context.Context, ownerID primitive.ObjectID, itemID string) error {
	objID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", itemID)
	}
	_, err = db.Collection(CollectionWishlistItems).DeleteOne(ctx, bson.M{"_id": objID, "owner_id": ownerID})
	return errors.Wrapf(err, "error deleting WishlistItem with ID: %s", itemID)
}
