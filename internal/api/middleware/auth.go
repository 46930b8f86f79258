package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/common/security"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	actorCtxKey contextKey = "actor"
	tokenCtxKey contextKey = "token"
)

// TokenInfo identifies the presented token so it can be revoked on logout.
type TokenInfo struct {
	ID        string
	ExpiresAt time.Time
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator requires a valid, unrevoked token placed in the context by
// jwtauth.Verify and resolves it to the calling Actor.
func Authenticator(revocations RevocationChecker, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				msg := "authentication required"
				if err != nil && !errors.Is(err, jwtauth.ErrNoTokenFound) {
					msg = "invalid or expired token"
				}
				common.RespondWithError(w, http.StatusUnauthorized, common.KindUnauthenticated, msg)
				return
			}

			actor, info, err := actorFromClaims(jwt.MapClaims(claims))
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, common.KindUnauthenticated, "invalid token claims")
				return
			}
			info.ExpiresAt = token.Expiration()

			revoked, err := revocations.IsRevoked(r.Context(), info.ID)
			if err != nil {
				log.Error("token revocation lookup failed", "error", err)
				common.RespondWithError(w, http.StatusServiceUnavailable, common.KindServiceUnavailable, "authentication temporarily unavailable")
				return
			}
			if revoked {
				common.RespondWithError(w, http.StatusUnauthorized, common.KindUnauthenticated, "token has been revoked")
				return
			}

			ctx := context.WithValue(r.Context(), actorCtxKey, actor)
			ctx = context.WithValue(ctx, tokenCtxKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromClaims(claims jwt.MapClaims) (model.Actor, TokenInfo, error) {
	userID, err := security.GetUserIDFromClaims(claims)
	if err != nil {
		return model.Actor{}, TokenInfo{}, err
	}
	role, err := security.GetUserRoleFromClaims(claims)
	if err != nil {
		return model.Actor{}, TokenInfo{}, err
	}
	if !model.Role(role).Valid() {
		return model.Actor{}, TokenInfo{}, fmt.Errorf("unknown role %q", role)
	}
	tokenID, err := security.GetTokenIDFromClaims(claims)
	if err != nil {
		return model.Actor{}, TokenInfo{}, err
	}
	return model.Actor{UserID: userID, Role: model.Role(role)}, TokenInfo{ID: tokenID}, nil
}

// RequireRole lets the request through only for the given roles. It must run after Authenticator.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, common.KindUnauthenticated, "authentication required")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, common.KindForbidden, "access denied for role "+string(actor.Role))
		})
	}
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey).(model.Actor)
	return actor, ok
}

func TokenFromContext(ctx context.Context) (TokenInfo, bool) {
	info, ok := ctx.Value(tokenCtxKey).(TokenInfo)
	return info, ok
}

// WithActor stores an actor in ctx. Used by tests exercising handlers directly.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}
