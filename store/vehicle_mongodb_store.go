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
	VEHICLES_COLLECTION = "vehicles"
)

type VehicleMongoDBStore struct {
	vehicles *mongo.Collection
	tracer   trace.Tracer
}

func NewVehicleMongoDBStore(client *mongo.Client, dbName string, tracer trace.Tracer) domain.VehicleStore {
	vehicles := client.Database(dbName).Collection(VEHICLES_COLLECTION)
	return &VehicleMongoDBStore{
		vehicles: vehicles,
		tracer:   tracer,
	}
}

func (store *VehicleMongoDBStore) GetRecent(ctx context.Context, limit int) ([]*domain.Vehicle, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.GetRecent")
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return store.filter(ctx, bson.M{}, opts)
}

func (store *VehicleMongoDBStore) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.GetAll")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return store.filter(ctx, bson.M{}, opts)
}

func (store *VehicleMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Vehicle, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.Get")
	defer span.End()

	result := store.vehicles.FindOne(ctx, bson.M{"_id": id})

	var vehicle domain.Vehicle
	if err := result.Decode(&vehicle); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (store *VehicleMongoDBStore) Insert(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.Insert")
	defer span.End()

	vehicle.ID = primitive.NewObjectID()
	result, err := store.vehicles.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle, nil
}

func (store *VehicleMongoDBStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.Update")
	defer span.End()

	result, err := store.vehicles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (store *VehicleMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "VehicleStore.Delete")
	defer span.End()

	result, err := store.vehicles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (store *VehicleMongoDBStore) filter(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*domain.Vehicle, error) {
	cursor, err := store.vehicles.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func decodeVehicles(ctx context.Context, cursor *mongo.Cursor) (vehicles []*domain.Vehicle, err error) {
	for cursor.Next(ctx) {
		var vehicle domain.Vehicle
		err = cursor.Decode(&vehicle)
		if err != nil {
			return
		}
		vehicles = append(vehicles, &vehicle)
	}
	err = cursor.Err()
	return
}
