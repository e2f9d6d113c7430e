package application

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cristalhq/jwt/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
	"travelease_service/errors"
)

type UserService struct {
	store  domain.UserStore
	tracer trace.Tracer
}

func NewUserService(store domain.UserStore, tracer trace.Tracer) *UserService {
	return &UserService{
		store:  store,
		tracer: tracer,
	}
}

// Register creates the user on first sight of the email and reports
// whether a record was created. Registering an existing email is not an
// error, the stored record is returned unchanged.
func (service *UserService) Register(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	existing, err := service.store.GetByEmail(ctx, user.Email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user.CreatedAt = time.Now()
	created, err := service.store.Insert(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	return created, true, nil
}

// Login authenticates by email lookup alone. The registration flow keeps
// no credential material, so there is nothing else to check; see the
// design notes.
func (service *UserService) Login(ctx context.Context, credentials *domain.Credentials) (string, *domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	user, err := service.store.GetByEmail(ctx, credentials.Email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, errors.UserNotFoundError)
		return "", nil, fmt.Errorf(errors.UserNotFoundError)
	}

	tokenString, err := GenerateJWT(user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", nil, err
	}

	return tokenString, user, nil
}

func GenerateJWT(user *domain.User) (string, error) {
	key := []byte(os.Getenv("SECRET_KEY"))
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		log.Println(err)
		return "", err
	}

	builder := jwt.NewBuilder(signer)

	claims := &domain.Claims{
		Email:     user.Email,
		ID:        user.ID.Hex(),
		ExpiresAt: time.Now().Add(time.Minute * 60),
	}

	token, err := builder.Build(claims)
	if err != nil {
		log.Println(err)
		return "", err
	}

	return token.String(), nil
}
