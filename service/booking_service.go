package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
	"travelease_service/errors"
)

type BookingService struct {
	store  domain.BookingStore
	mailer *Mailer
	logger *log.Logger
	tracer trace.Tracer
}

// NewBookingService wires the ledger. mailer may be nil when no SMTP
// account is configured; confirmation mails are then skipped.
func NewBookingService(store domain.BookingStore, mailer *Mailer, logger *log.Logger, tracer trace.Tracer) *BookingService {
	return &BookingService{
		store:  store,
		mailer: mailer,
		logger: logger,
		tracer: tracer,
	}
}

func (service *BookingService) GetByUser(ctx context.Context, email string) ([]*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetByUser")
	defer span.End()

	return service.store.GetByUser(ctx, email)
}

// Create inserts a booking after checking that the caller is booking for
// themselves and the vehicle is free. The existence check gives the
// friendly error; the unique index on vehicleId catches the race where
// two requests pass the check at once.
func (service *BookingService) Create(ctx context.Context, booking *domain.Booking, claims *domain.Claims) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	if booking.UserEmail != claims.Email {
		span.SetStatus(codes.Error, errors.BookingOwnerMismatch)
		return nil, fmt.Errorf(errors.BookingOwnerMismatch)
	}

	exists, err := service.store.ExistsForVehicle(ctx, booking.VehicleID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, errors.VehicleAlreadyBooked)
		return nil, fmt.Errorf(errors.VehicleAlreadyBooked)
	}

	booking.CreatedAt = time.Now()
	booking.ConfirmationCode = uuid.New().String()

	created, err := service.store.Insert(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf(errors.VehicleAlreadyBooked)
		}
		return nil, err
	}

	if service.mailer != nil {
		if err := service.mailer.SendBookingConfirmation(created.UserEmail, created.ConfirmationCode, created.VehicleID); err != nil {
			service.logger.Println("failed to send booking confirmation mail:", err)
		}
	}

	return created, nil
}

func (service *BookingService) Cancel(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.Cancel")
	defer span.End()

	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if deleted == 0 {
		return fmt.Errorf(errors.BookingNotFoundError)
	}
	return nil
}
