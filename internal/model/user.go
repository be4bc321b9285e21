package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Name       string               `bson:"name"`
	Email      string               `bson:"email"`
	PhotoURL   string               `bson:"photo_url,omitempty"`
	Password   []byte               `bson:"password"`
	Devices    []Device             `bson:"devices"`
	EventIcons map[EventType]string `bson:"event_icons,omitempty"`
	CreatedAt  primitive.DateTime   `bson:"created_at"`
	UpdatedAt  primitive.DateTime   `bson:"updated_at"`
}

type Device struct {
	DeviceID   string             `bson:"device_id"`
	LoginToken LoginToken         `bson:"login_token"`
	FCMToken   string             `bson:"fcm_token,omitempty"`
	LastSeen   primitive.DateTime `bson:"last_seen"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}

type LoginToken struct {
	Token      []byte             `bson:"token"`
	Expiration primitive.DateTime `bson:"expiration"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}
