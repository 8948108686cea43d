package middleware

import (
	"context"
	"errors"
	"net/http"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserIDHeader carries the caller's id, set by the upstream identity provider.
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

// UserLookup resolves a caller to an account.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// WithUserID returns a copy of ctx carrying the caller id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the authenticated caller id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// RequireUser rejects requests without a valid X-User-ID header.
func RequireUser(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed user id header")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// RequireStaff admits only owners and workers. It must run after RequireUser.
func RequireStaff(users UserLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, model.ErrUserNotFound) {
					writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
					return
				}
				logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to resolve caller")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}

			if user == nil {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			if !user.IsStaff() {
				logger.Warn().Str("user_id", id.String()).Str("path", r.URL.Path).Msg("staff route denied")
				writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, model.ErrForbidden.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
