package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/store"
)

// ContextKey используется для ключей в контексте запроса.
type ContextKey string

// ActorKey ключ для хранения действующего пользователя в контексте.
const ActorKey ContextKey = "actor"

// AuthMiddleware проверяет access-токен из заголовка Authorization
// и кладет действующего пользователя в контекст запроса.
// Пользователь загружается из хранилища, а не восстанавливается из
// клеймов: смена роли или удаление учетной записи действуют сразу.
func (h *HTTPHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.logger.WarnContext(r.Context(), "Authorization header missing", slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Ожидаем токен в формате "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			h.logger.WarnContext(r.Context(), "Invalid Authorization header format")
			h.respondError(w, r, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := h.tokenManager.ValidateAccess(parts[1])
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid or expired token", slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := h.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				h.logger.WarnContext(r.Context(), "User from valid token not found in store",
					slog.String("userID", claims.UserID))
				h.respondError(w, r, http.StatusUnauthorized, "User associated with token no longer exists")
				return
			}
			h.logger.ErrorContext(r.Context(), "Failed to load user for token",
				slog.String("userID", claims.UserID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Error processing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), ActorKey, user)
		h.logger.DebugContext(ctx, "Token validated successfully",
			slog.String("userID", user.ID), slog.String("role", string(user.Role)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFromContext возвращает действующего пользователя запроса
// или nil для анонимного вызова.
func actorFromContext(ctx context.Context) *domain.User {
	actor, _ := ctx.Value(ActorKey).(*domain.User)
	return actor
}
