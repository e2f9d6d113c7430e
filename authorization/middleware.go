package authorization

import (
	"context"
	"net/http"
	"strings"

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"

	"travelease_service/domain"
	"travelease_service/errors"
)

type ClaimsKey struct{}

const (
	roleUnauthenticated = "Unauthenticated"
	roleUser            = "User"
)

// ClaimsFromContext returns the identity claim attached by the middleware,
// or nil on ungated routes reached without a credential.
func ClaimsFromContext(ctx context.Context) *domain.Claims {
	claims, ok := ctx.Value(ClaimsKey{}).(*domain.Claims)
	if !ok {
		return nil
	}
	return claims
}

// Middleware gates requests with the casbin policy. Requests without a
// credential run as Unauthenticated; a verified credential upgrades the
// role to User and attaches the decoded claims to the request context.
// A missing credential on a gated route is unauthorized, a present but
// rejected credential is forbidden.
func Middleware(enforcer *casbin.Enforcer, verifiers []TokenVerifier, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)

			if tokenString == "" {
				if !enforce(enforcer, roleUnauthenticated, r, logger) {
					logger.Warn("Unauthorized access attempt: no token")
					http.Error(w, errors.NoTokenError, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims := verify(r.Context(), verifiers, tokenString, logger)
			if claims == nil {
				// Rejected credentials still pass on public routes.
				if enforce(enforcer, roleUnauthenticated, r, logger) {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, errors.InvalidTokenError, http.StatusForbidden)
				return
			}

			if !enforce(enforcer, roleUser, r, logger) {
				logger.Warn("Unauthorized access attempt: forbidden")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func extractBearerToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return ""
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return ""
	}
	return strings.TrimSpace(bearerToken[1])
}

// verify tries each scheme in order; the token is accepted if it is valid
// under either one. The underlying errors stay server-side.
func verify(ctx context.Context, verifiers []TokenVerifier, tokenString string, logger *logrus.Logger) *domain.Claims {
	for _, verifier := range verifiers {
		claims, err := verifier.Verify(ctx, tokenString)
		if err == nil {
			return claims
		}
		logger.Printf("token verification failed: %s", err)
	}
	return nil
}

func enforce(enforcer *casbin.Enforcer, role string, r *http.Request, logger *logrus.Logger) bool {
	res, err := enforcer.EnforceSafe(role, r.URL.Path, r.Method)
	if err != nil {
		logger.Error("Error enforcing authorization policy: ", err)
		return false
	}
	return res
}
