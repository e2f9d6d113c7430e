package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/authorization"
	"travelease_service/domain"
	"travelease_service/errors"
	application "travelease_service/service"
)

type VehicleHandler struct {
	logger  *log.Logger
	service *application.VehicleService
	tracer  trace.Tracer
}

func NewVehicleHandler(logger *log.Logger, service *application.VehicleService, tracer trace.Tracer) *VehicleHandler {
	return &VehicleHandler{
		logger:  logger,
		service: service,
		tracer:  tracer,
	}
}

func (handler *VehicleHandler) Init(router *mux.Router) {
	router.HandleFunc("/vehicles", handler.GetRecent).Methods("GET")
	router.HandleFunc("/vehicles/{id}", handler.GetByID).Methods("GET")
	router.HandleFunc("/allVehicles", handler.GetAll).Methods("GET")
	router.HandleFunc("/vehicles", handler.Create).Methods("POST")
	router.HandleFunc("/vehicles/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/vehicles/{id}", handler.Delete).Methods("DELETE")
}

func (handler *VehicleHandler) GetRecent(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.GetRecent")
	defer span.End()

	vehicles, err := handler.service.GetRecent(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("listing recent vehicles failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	if vehicles == nil {
		vehicles = []*domain.Vehicle{}
	}
	jsonResponse(vehicles, writer)
}

func (handler *VehicleHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.GetAll")
	defer span.End()

	vehicles, err := handler.service.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("listing all vehicles failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	if vehicles == nil {
		vehicles = []*domain.Vehicle{}
	}
	jsonResponse(vehicles, writer)
}

func (handler *VehicleHandler) GetByID(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.GetByID")
	defer span.End()

	// Malformed ids are rejected before any database round trip.
	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errors.InvalidIDError, http.StatusBadRequest)
		return
	}

	vehicle, err := handler.service.Get(ctx, id)
	if err != nil {
		if err.Error() == errors.VehicleNotFoundError {
			http.Error(writer, errors.VehicleNotFoundError, http.StatusNotFound)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("fetching vehicle failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	jsonResponse(vehicle, writer)
}

func (handler *VehicleHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.Create")
	defer span.End()

	vehicle := &domain.Vehicle{}
	if err := vehicle.FromJSON(req.Body); err != nil {
		http.Error(writer, errors.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	if err := vehicle.Validate(); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	// A listing created without an explicit owner belongs to the caller.
	if vehicle.OwnerEmail == "" {
		if claims := authorization.ClaimsFromContext(ctx); claims != nil {
			vehicle.OwnerEmail = claims.Email
		}
	}

	created, err := handler.service.Create(ctx, vehicle)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("creating vehicle failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(map[string]string{"insertedId": created.ID.Hex()}, writer)
}

func (handler *VehicleHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.Update")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errors.InvalidIDError, http.StatusBadRequest)
		return
	}

	var fields bson.M
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		http.Error(writer, errors.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	if err := handler.service.Update(ctx, id, fields); err != nil {
		if err.Error() == errors.VehicleNotFoundError {
			http.Error(writer, errors.VehicleNotFoundError, http.StatusNotFound)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("updating vehicle failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusOK)
}

func (handler *VehicleHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "VehicleHandler.Delete")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errors.InvalidIDError, http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		if err.Error() == errors.VehicleNotFoundError {
			http.Error(writer, errors.VehicleNotFoundError, http.StatusNotFound)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("deleting vehicle failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusOK)
}
