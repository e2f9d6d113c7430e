package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
	"travelease_service/errors"
	application "travelease_service/service"
)

type UserHandler struct {
	logger  *log.Logger
	service *application.UserService
	tracer  trace.Tracer
}

func NewUserHandler(logger *log.Logger, service *application.UserService, tracer trace.Tracer) *UserHandler {
	return &UserHandler{
		logger:  logger,
		service: service,
		tracer:  tracer,
	}
}

func (handler *UserHandler) Init(router *mux.Router) {
	router.HandleFunc("/", handler.Health).Methods("GET")
	router.HandleFunc("/users", handler.Register).Methods("POST")
	router.HandleFunc("/login", handler.Login).Methods("POST")
}

func (handler *UserHandler) Health(writer http.ResponseWriter, req *http.Request) {
	writer.Write([]byte("TravelEase server running..."))
}

func (handler *UserHandler) Register(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Register")
	defer span.End()

	user := &domain.User{}
	if err := user.FromJSON(req.Body); err != nil {
		http.Error(writer, errors.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	if err := user.Validate(); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	registered, created, err := handler.service.Register(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("register failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	if !created {
		writer.WriteHeader(http.StatusOK)
		jsonResponse(map[string]interface{}{
			"message": errors.UserAlreadyExists,
			"user":    registered,
		}, writer)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(registered, writer)
}

func (handler *UserHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Login")
	defer span.End()

	var credentials domain.Credentials
	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		http.Error(writer, errors.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	token, user, err := handler.service.Login(ctx, &credentials)
	if err != nil {
		if err.Error() == errors.UserNotFoundError {
			http.Error(writer, errors.UserNotFoundError, http.StatusUnauthorized)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("login failed:", err)
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	jsonResponse(map[string]interface{}{
		"token": token,
		"user":  user,
	}, writer)
}

func jsonResponse(object interface{}, writer http.ResponseWriter) {
	resp, err := json.Marshal(object)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Write(resp)
}
