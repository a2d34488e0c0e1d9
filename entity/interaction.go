package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionRecord is one handled message of a dialogue, kept as history.
type InteractionRecord struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Action    string             `json:"action,omitempty" bson:"action"`
	Value     string             `json:"value,omitempty" bson:"value"`
	Name      string             `json:"name,omitempty" bson:"name"`
	View      string             `json:"view" bson:"view"`
	Ordinal   int                `json:"ordinal" bson:"ordinal"` // -1 when the dialogue ended
	Caller    string             `json:"caller,omitempty" bson:"caller,omitempty"` // API user, empty for chat transports
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
