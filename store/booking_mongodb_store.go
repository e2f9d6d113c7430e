package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
)

const (
	BOOKINGS_COLLECTION = "bookings"
)

type BookingMongoDBStore struct {
	bookings *mongo.Collection
	tracer   trace.Tracer
}

func NewBookingMongoDBStore(client *mongo.Client, dbName string, tracer trace.Tracer) *BookingMongoDBStore {
	bookings := client.Database(dbName).Collection(BOOKINGS_COLLECTION)
	return &BookingMongoDBStore{
		bookings: bookings,
		tracer:   tracer,
	}
}

// EnsureIndexes creates the unique index on vehicleId so that two
// concurrent create requests cannot both insert a booking for the same
// vehicle. The pre-insert existence check stays for the caller-facing
// error message; the index is what actually holds the invariant.
func (store *BookingMongoDBStore) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "vehicleId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := store.bookings.Indexes().CreateOne(ctx, model)
	return err
}

func (store *BookingMongoDBStore) GetByUser(ctx context.Context, email string) ([]*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.GetByUser")
	defer span.End()

	return store.filter(ctx, bson.M{"userEmail": email})
}

func (store *BookingMongoDBStore) ExistsForVehicle(ctx context.Context, vehicleID string) (bool, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.ExistsForVehicle")
	defer span.End()

	count, err := store.bookings.CountDocuments(ctx, bson.M{"vehicleId": vehicleID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (store *BookingMongoDBStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.Insert")
	defer span.End()

	booking.ID = primitive.NewObjectID()
	result, err := store.bookings.InsertOne(ctx, booking)
	if err != nil {
		return nil, err
	}
	booking.ID = result.InsertedID.(primitive.ObjectID)
	return booking, nil
}

func (store *BookingMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.Delete")
	defer span.End()

	result, err := store.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (store *BookingMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Booking, error) {
	cursor, err := store.bookings.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	for cursor.Next(ctx) {
		var booking domain.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}
	return bookings, cursor.Err()
}
