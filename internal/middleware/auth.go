package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkgen/inkgen/internal/auth"
	"github.com/inkgen/inkgen/internal/model"
)

// TokenVerifier checks a bearer token and extracts its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// ProfileDirectory resolves the plan and usage metadata for a user.
type ProfileDirectory interface {
	Profile(ctx context.Context, userID string) (*model.Profile, error)
}

// Authenticate verifies the Authorization bearer token, resolves the
// caller's plan and free usage, and stores the resulting identity in the
// request context. Requests without a valid token get a 401; an unreachable
// identity provider is a 401 too since no identity can be established.
func Authenticate(verifier TokenVerifier, directory ProfileDirectory, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("token rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			profile, err := directory.Profile(r.Context(), claims.Subject)
			if err != nil {
				logger.Error("identity lookup failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("user_id", claims.Subject),
					slog.String("error", err.Error()),
				)
				unauthorized(w, "Unable to verify user")
				return
			}

			id := model.Identity{
				UserID:    claims.Subject,
				Plan:      profile.Plan,
				FreeUsage: profile.FreeUsage,
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
