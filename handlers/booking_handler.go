package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/authorization"
	"travelease_service/domain"
	"travelease_service/errors"
	application "travelease_service/service"
)

type BookingHandler struct {
	logger  *log.Logger
	service *application.BookingService
	tracer  trace.Tracer
}

func NewBookingHandler(logger *log.Logger, service *application.BookingService, tracer trace.Tracer) *BookingHandler {
	return &BookingHandler{
		logger:  logger,
		service: service,
		tracer:  tracer,
	}
}

func (handler *BookingHandler) Init(router *mux.Router) {
	router.HandleFunc("/bookings", handler.GetMine).Methods("GET")
	router.HandleFunc("/bookings", handler.Create).Methods("POST")
	router.HandleFunc("/bookings/{id}", handler.Cancel).Methods("DELETE")
}

func (handler *BookingHandler) GetMine(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetMine")
	defer span.End()

	claims := authorization.ClaimsFromContext(ctx)
	if claims == nil {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}

	bookings, err := handler.service.GetByUser(ctx, claims.Email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("listing bookings failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	jsonResponse(bookings, writer)
}

func (handler *BookingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Create")
	defer span.End()

	claims := authorization.ClaimsFromContext(ctx)
	if claims == nil {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}

	booking := &domain.Booking{}
	if err := booking.FromJSON(req.Body); err != nil {
		http.Error(writer, errors.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	if err := booking.Validate(); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(ctx, booking, claims)
	if err != nil {
		switch err.Error() {
		case errors.BookingOwnerMismatch:
			http.Error(writer, errors.BookingOwnerMismatch, http.StatusForbidden)
		case errors.VehicleAlreadyBooked:
			http.Error(writer, errors.VehicleAlreadyBooked, http.StatusBadRequest)
		default:
			span.SetStatus(codes.Error, err.Error())
			handler.logger.Println("creating booking failed:", err)
			http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		}
		return
	}

	jsonResponse(map[string]string{"bookingId": created.ID.Hex()}, writer)
}

func (handler *BookingHandler) Cancel(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Cancel")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errors.InvalidIDError, http.StatusBadRequest)
		return
	}

	if err := handler.service.Cancel(ctx, id); err != nil {
		if err.Error() == errors.BookingNotFoundError {
			http.Error(writer, errors.BookingNotFoundError, http.StatusNotFound)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("cancelling booking failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusOK)
}
