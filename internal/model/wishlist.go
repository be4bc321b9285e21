package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// WishlistItem is a plant the user wants but does not own yet. It has no
// lifecycle of its own and can be converted into a Plant.
type WishlistItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"item_id"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt primitive.DateTime `bson:"updated_at" json:"-"`
}
