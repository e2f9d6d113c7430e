package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelease_service/domain"
	"travelease_service/errors"
)

type stubVehicleStore struct {
	vehicles     map[primitive.ObjectID]*domain.Vehicle
	recentCalls  int
	updateCalls  int
	updateFields bson.M
}

func newStubVehicleStore() *stubVehicleStore {
	return &stubVehicleStore{vehicles: map[primitive.ObjectID]*domain.Vehicle{}}
}

func (s *stubVehicleStore) GetRecent(ctx context.Context, limit int) ([]*domain.Vehicle, error) {
	s.recentCalls++
	var vehicles []*domain.Vehicle
	for _, vehicle := range s.vehicles {
		vehicles = append(vehicles, vehicle)
	}
	if len(vehicles) > limit {
		vehicles = vehicles[:limit]
	}
	return vehicles, nil
}

func (s *stubVehicleStore) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	for _, vehicle := range s.vehicles {
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, nil
}

func (s *stubVehicleStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Vehicle, error) {
	return s.vehicles[id], nil
}

func (s *stubVehicleStore) Insert(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	vehicle.ID = primitive.NewObjectID()
	s.vehicles[vehicle.ID] = vehicle
	return vehicle, nil
}

func (s *stubVehicleStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	s.updateCalls++
	s.updateFields = fields
	if _, ok := s.vehicles[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (s *stubVehicleStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := s.vehicles[id]; !ok {
		return 0, nil
	}
	delete(s.vehicles, id)
	return 1, nil
}

type stubListingCache struct {
	recent      []*domain.Vehicle
	invalidated int
}

func (c *stubListingCache) PostRecent(ctx context.Context, vehicles []*domain.Vehicle) error {
	c.recent = vehicles
	return nil
}

func (c *stubListingCache) GetRecent(ctx context.Context) ([]*domain.Vehicle, error) {
	if c.recent == nil {
		return nil, fmt.Errorf("cache miss")
	}
	return c.recent, nil
}

func (c *stubListingCache) InvalidateRecent(ctx context.Context) error {
	c.recent = nil
	c.invalidated++
	return nil
}

func quietLog() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestUpdateStripsProtectedFields(t *testing.T) {
	store := newStubVehicleStore()
	service := NewVehicleService(store, &stubListingCache{}, quietLog(), noopTracer())

	created, err := service.Create(context.Background(), &domain.Vehicle{Name: "Camper", OwnerEmail: "owner@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fields := bson.M{
		"name":       "Bigger Camper",
		"ownerEmail": "hijacker@x.com",
		"_id":        "ffffffffffffffffffffffff",
		"createdAt":  "2001-01-01",
	}
	if err := service.Update(context.Background(), created.ID, fields); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := store.updateFields["ownerEmail"]; ok {
		t.Fatalf("ownership field reached the store")
	}
	if _, ok := store.updateFields["_id"]; ok {
		t.Fatalf("storage key reached the store")
	}
	if _, ok := store.updateFields["createdAt"]; ok {
		t.Fatalf("creation stamp reached the store")
	}
	if store.updateFields["name"] != "Bigger Camper" {
		t.Fatalf("legitimate field was dropped: %#v", store.updateFields)
	}
}

func TestUpdateWithOnlyProtectedFieldsSucceeds(t *testing.T) {
	store := newStubVehicleStore()
	service := NewVehicleService(store, &stubListingCache{}, quietLog(), noopTracer())

	created, err := service.Create(context.Background(), &domain.Vehicle{Name: "Camper", OwnerEmail: "owner@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fields := bson.M{"ownerEmail": "hijacker@x.com", "_id": "ffffffffffffffffffffffff"}
	if err := service.Update(context.Background(), created.ID, fields); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if store.updateCalls != 0 {
		t.Fatalf("an empty field map reached the store: %#v", store.updateFields)
	}
}

func TestUpdateWithOnlyProtectedFieldsUnknownVehicleIsNotFound(t *testing.T) {
	service := NewVehicleService(newStubVehicleStore(), &stubListingCache{}, quietLog(), noopTracer())

	err := service.Update(context.Background(), primitive.NewObjectID(), bson.M{"ownerEmail": "x@x.com"})
	if err == nil || err.Error() != errors.VehicleNotFoundError {
		t.Fatalf("expected %q, got %v", errors.VehicleNotFoundError, err)
	}
}

func TestUpdateUnknownVehicleIsNotFound(t *testing.T) {
	service := NewVehicleService(newStubVehicleStore(), &stubListingCache{}, quietLog(), noopTracer())

	err := service.Update(context.Background(), primitive.NewObjectID(), bson.M{"name": "x"})
	if err == nil || err.Error() != errors.VehicleNotFoundError {
		t.Fatalf("expected %q, got %v", errors.VehicleNotFoundError, err)
	}
}

func TestCreateStampsCreationTime(t *testing.T) {
	service := NewVehicleService(newStubVehicleStore(), &stubListingCache{}, quietLog(), noopTracer())

	before := time.Now()
	created, err := service.Create(context.Background(), &domain.Vehicle{Name: "Van"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedAt.Before(before) {
		t.Fatalf("expected server-side creation stamp")
	}
}

func TestGetRecentServedFromCache(t *testing.T) {
	store := newStubVehicleStore()
	cache := &stubListingCache{recent: []*domain.Vehicle{{Name: "Cached"}}}
	service := NewVehicleService(store, cache, quietLog(), noopTracer())

	vehicles, err := service.GetRecent(context.Background())
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].Name != "Cached" {
		t.Fatalf("expected cached listing, got %#v", vehicles)
	}
	if store.recentCalls != 0 {
		t.Fatalf("store should not be hit on a warm cache")
	}
}

func TestGetRecentFillsCacheOnMiss(t *testing.T) {
	store := newStubVehicleStore()
	cache := &stubListingCache{}
	service := NewVehicleService(store, cache, quietLog(), noopTracer())

	if _, err := service.Create(context.Background(), &domain.Vehicle{Name: "Van"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := service.GetRecent(context.Background()); err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if store.recentCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.recentCalls)
	}
	if cache.recent == nil {
		t.Fatalf("expected cache to be filled")
	}
}

func TestWritesInvalidateListingCache(t *testing.T) {
	store := newStubVehicleStore()
	cache := &stubListingCache{recent: []*domain.Vehicle{{Name: "Stale"}}}
	service := NewVehicleService(store, cache, quietLog(), noopTracer())

	created, err := service.Create(context.Background(), &domain.Vehicle{Name: "Van"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("create should invalidate the cache")
	}

	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cache.invalidated != 2 {
		t.Fatalf("delete should invalidate the cache")
	}
}

func TestDeleteUnknownVehicleIsNotFound(t *testing.T) {
	service := NewVehicleService(newStubVehicleStore(), &stubListingCache{}, quietLog(), noopTracer())

	err := service.Delete(context.Background(), primitive.NewObjectID())
	if err == nil || err.Error() != errors.VehicleNotFoundError {
		t.Fatalf("expected %q, got %v", errors.VehicleNotFoundError, err)
	}
}
