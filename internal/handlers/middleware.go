package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/services"
)

type contextKey string

const fidContextKey contextKey = "fid"

// FidFromContext returns the authenticated fid, or 0 when the request was
// not authenticated.
func FidFromContext(ctx context.Context) int64 {
	fid, _ := ctx.Value(fidContextKey).(int64)
	return fid
}

// RequireSession authenticates the bearer token and stores the fid on the
// request context.
func RequireSession(sessions *services.SessionService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, logger, apperrors.Unauthorized("missing bearer token"))
				return
			}

			fid, err := sessions.VerifyToken(token)
			if err != nil {
				writeError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), fidContextKey, fid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCronSecret guards the dispatch trigger with the static scheduler
// secret. Rejection happens before any side effect.
func RequireCronSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeError(w, logger, apperrors.Unauthorized("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
