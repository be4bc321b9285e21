package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leaflog/internal/model"
)

func (db Database) UserInsert(ctx context.Context, u model.User) (id string, err error) {
	if u.Devices == nil {
		u.Devices = []model.Device{}
	}
	u.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	u.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionUsers).InsertOne(ctx, u)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting User with email: %s", u.Email)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) UserFindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := db.Collection(CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with email: %s", email)
}

func (db Database) UserFindByID(ctx context.Context, id string) (model.User, error) {
	var u model.User

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return u, errors.Wrapf(err, "error creating ObjectID from hex: %s", id)
	}

	err = db.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": objID}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with ID: %s", id)
}

func (db Database) UserDeviceAdd(ctx context.Context, userID string, d model.Device) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	d.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	d.LastSeen = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{
			"devices": bson.M{
				"$each":     []model.Device{d},
				"$position": 0,
				"$slice":    8,
			},
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding Device to User with ID: %s", userID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "User not modified when adding Device, ID: %s", userID)
	}
	return nil
}

func (db Database) UserDeviceUpdate(ctx context.Context, userID string, d model.Device) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID, "devices.device_id": d.DeviceID},
		bson.M{"$set": bson.M{
			"devices.$.login_token": d.LoginToken,
			"devices.$.fcm_token":   d.FCMToken,
			"devices.$.last_seen":   primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Device on User with ID: %s, DeviceID: %s", userID, d.DeviceID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Device not found when updating, UserID: %s, DeviceID: %s", userID, d.DeviceID)
	}
	return nil
}

func (db Database) UserDeviceLastSeenUpdate(ctx context.Context, userID string, deviceID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	_, err = db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID, "devices.device_id": deviceID},
		bson.M{"$set": bson.M{"devices.$.last_seen": primitive.NewDateTimeFromTime(time.Now())}},
	)
	return errors.Wrapf(err, "error updating Device LastSeen, UserID: %s, DeviceID: %s", userID, deviceID)
}

// UserDeviceTokensRemove clears the login and FCM tokens of one device,
// which is what logging out means for that device.
func (db Database) UserDeviceTokensRemove(ctx context.Context, userID string, deviceID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID, "devices.device_id": deviceID},
		bson.M{"$unset": bson.M{
			"devices.$.login_token": "",
			"devices.$.fcm_token":   "",
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error removing Device tokens, UserID: %s, DeviceID: %s", userID, deviceID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Device not found when removing tokens, UserID: %s, DeviceID: %s", userID, deviceID)
	}
	return nil
}

func (db Database) UserDeviceFCMTokenUpdate(ctx context.Context, userID string, deviceID string, fcmToken string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID, "devices.device_id": deviceID},
		bson.M{"$set": bson.M{"devices.$.fcm_token": fcmToken}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Device FCMToken, UserID: %s, DeviceID: %s", userID, deviceID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Device not found when updating FCMToken, UserID: %s, DeviceID: %s", userID, deviceID)
	}
	return nil
}

// UserEventIconsUpdate overwrites the user's event-icon configuration, a
// purely cosmetic mapping from event type to a display-icon identifier.
func (db Database) UserEventIconsUpdate(ctx context.Context, userID string, icons map[model.EventType]string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{
			"event_icons": icons,
			"updated_at":  primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating event icons for User with ID: %s", userID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "User not found when updating event icons, ID: %s", userID)
	}
	return nil
}

func (db Database) UserProfileUpdate(ctx context.Context, userID string, name string, photoURL string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{
			"name":       name,
			"photo_url":  photoURL,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile for User with ID: %s", userID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "User not found when updating profile, ID: %s", userID)
	}
	return nil
}
