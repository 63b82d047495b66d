package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a caller-supplied id is not a valid ObjectID hex.
var ErrInvalidID = errors.New("invalid id")

// parseObjectID converts a hex string to an ObjectID, mapping parse
// failures to ErrInvalidID.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
