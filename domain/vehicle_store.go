package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStore interface {
	// GetRecent returns at most limit vehicles, newest first.
	GetRecent(ctx context.Context, limit int) ([]*Vehicle, error)
	GetAll(ctx context.Context) ([]*Vehicle, error)
	// Get returns (nil, nil) when no vehicle exists for the id.
	Get(ctx context.Context, id primitive.ObjectID) (*Vehicle, error)
	Insert(ctx context.Context, vehicle *Vehicle) (*Vehicle, error)
	// Update applies a partial $set merge and reports the matched count.
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error)
	// Delete reports the deleted count.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}
