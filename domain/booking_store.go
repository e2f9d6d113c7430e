package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStore interface {
	GetByUser(ctx context.Context, email string) ([]*Booking, error)
	// ExistsForVehicle reports whether an active booking already references
	// the vehicle.
	ExistsForVehicle(ctx context.Context, vehicleID string) (bool, error)
	Insert(ctx context.Context, booking *Booking) (*Booking, error)
	// Delete reports the deleted count.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}
