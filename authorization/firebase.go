package authorization

import (
	"context"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"

	"travelease_service/domain"
)

// FirebaseVerifier accepts ID tokens issued by the external identity
// provider. It is the second verification scheme: tokens that fail the
// local signature check may still be valid here.
type FirebaseVerifier struct {
	client *firebaseauth.Client
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewFirebaseVerifier(ctx context.Context, credentialsPath string, logger *logrus.Logger) (*FirebaseVerifier, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	return &FirebaseVerifier{
		client: client,
		cb:     identityProviderBreaker(logger),
		logger: logger,
	}, nil
}

func identityProviderBreaker(logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        "identityProvider",
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Printf("Circuit Breaker '%s' changed from '%s' to '%s'\n", name, from, to)
			},
		},
	)
}

func (fv *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*domain.Claims, error) {
	result, err := fv.cb.Execute(func() (interface{}, error) {
		return fv.client.VerifyIDToken(ctx, tokenString)
	})
	if err != nil {
		return nil, err
	}

	token := result.(*firebaseauth.Token)

	email, _ := token.Claims["email"].(string)
	return &domain.Claims{
		Email:     email,
		ID:        token.UID,
		ExpiresAt: time.Unix(token.Expires, 0),
	}, nil
}
