package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/restkeep/restkeep/internal/server/handlers"
	"github.com/restkeep/restkeep/internal/server/storage"
)

// HeaderSessionID несет идентификатор сессии, равный hex общего SRP ключа K.
const HeaderSessionID = "X-Session-Id"

// AuthMiddleware создает middleware для проверки сессии.
// Идентификатор сессии неугадываем (256 бит общего секрета), поэтому сам
// заголовок служит доказательством пройденного рукопожатия.
func AuthMiddleware(logger *slog.Logger, sessions storage.SessionStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(HeaderSessionID)
			if sessionID == "" {
				logger.Warn("missing session header", "path", r.URL.Path)
				http.Error(w, "Unauthorized: missing session", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.GetSession(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, storage.ErrSessionNotFound) {
					logger.Warn("unknown session", "path", r.URL.Path)
					http.Error(w, "Unauthorized: invalid session", http.StatusUnauthorized)
					return
				}
				logger.Error("failed to look up session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.AccountIDKey, sess.AccountID)
			ctx = context.WithValue(ctx, handlers.SessionIDKey, sess.ID)

			logger.Debug("session authenticated", "account_id", sess.AccountID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
