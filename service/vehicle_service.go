package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
	"travelease_service/errors"
)

// recentListingLimit caps the public listing page.
const recentListingLimit = 6

type VehicleService struct {
	store  domain.VehicleStore
	cache  domain.ListingCache
	logger *log.Logger
	tracer trace.Tracer
}

func NewVehicleService(store domain.VehicleStore, cache domain.ListingCache, logger *log.Logger, tracer trace.Tracer) *VehicleService {
	return &VehicleService{
		store:  store,
		cache:  cache,
		logger: logger,
		tracer: tracer,
	}
}

// GetRecent serves the public landing page listing, newest first. Cache
// failures fall through to the store.
func (service *VehicleService) GetRecent(ctx context.Context) ([]*domain.Vehicle, error) {
	ctx, span := service.tracer.Start(ctx, "VehicleService.GetRecent")
	defer span.End()

	if cached, err := service.cache.GetRecent(ctx); err == nil {
		return cached, nil
	}

	vehicles, err := service.store.GetRecent(ctx, recentListingLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := service.cache.PostRecent(ctx, vehicles); err != nil {
		service.logger.Println("failed to cache recent listings:", err)
	}

	return vehicles, nil
}

func (service *VehicleService) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	ctx, span := service.tracer.Start(ctx, "VehicleService.GetAll")
	defer span.End()

	return service.store.GetAll(ctx)
}

func (service *VehicleService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Vehicle, error) {
	ctx, span := service.tracer.Start(ctx, "VehicleService.Get")
	defer span.End()

	vehicle, err := service.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if vehicle == nil {
		return nil, fmt.Errorf(errors.VehicleNotFoundError)
	}
	return vehicle, nil
}

func (service *VehicleService) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	ctx, span := service.tracer.Start(ctx, "VehicleService.Create")
	defer span.End()

	vehicle.CreatedAt = time.Now()
	created, err := service.store.Insert(ctx, vehicle)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	service.invalidateListings(ctx)
	return created, nil
}

// Update merges the given fields into the stored document. The ownership
// field is stripped so an update payload cannot reassign the listing, and
// the storage key and creation stamp are never client-writable.
func (service *VehicleService) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, span := service.tracer.Start(ctx, "VehicleService.Update")
	defer span.End()

	delete(fields, "ownerEmail")
	delete(fields, "_id")
	delete(fields, "id")
	delete(fields, "createdAt")

	// Stripping can leave nothing to set, and mongo rejects an empty $set.
	// An existence check keeps the not-found contract for such payloads.
	if len(fields) == 0 {
		vehicle, err := service.store.Get(ctx, id)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if vehicle == nil {
			return fmt.Errorf(errors.VehicleNotFoundError)
		}
		return nil
	}

	matched, err := service.store.Update(ctx, id, fields)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if matched == 0 {
		return fmt.Errorf(errors.VehicleNotFoundError)
	}

	service.invalidateListings(ctx)
	return nil
}

func (service *VehicleService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "VehicleService.Delete")
	defer span.End()

	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if deleted == 0 {
		return fmt.Errorf(errors.VehicleNotFoundError)
	}

	service.invalidateListings(ctx)
	return nil
}

func (service *VehicleService) invalidateListings(ctx context.Context) {
	if err := service.cache.InvalidateRecent(ctx); err != nil {
		service.logger.Println("failed to invalidate listing cache:", err)
	}
}
