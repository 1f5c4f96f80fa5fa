package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lagmas/api-yamdb/internal/account"
	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/store"
)

// SignUp регистрирует пользователя и отправляет код подтверждения на почту.
// Повторный запрос с теми же email и username не создает дубликата -
// высылается новый код для той же учетной записи.
func (h *HTTPHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP SignUp request received", slog.String("path", r.URL.Path))

	var req domain.SignUpRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.accounts.SignUp(ctx, req.Email, req.Username); err != nil {
		switch {
		case errors.Is(err, account.ErrReservedUsername):
			h.respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrUserAlreadyExists):
			h.respondError(w, r, http.StatusConflict, "User with this email or username already exists")
		case errors.Is(err, account.ErrDeliveryFailed):
			h.respondError(w, r, http.StatusInternalServerError, "Failed to deliver confirmation code")
		default:
			h.respondStoreError(w, r, err, "Failed to register user")
		}
		return
	}

	// Код уходит только почтой, в ответе его нет
	h.respondJSON(w, r, http.StatusOK, map[string]string{
		"email":    req.Email,
		"username": req.Username,
	})
}

// ObtainToken обменивает username и код подтверждения на пару токенов.
func (h *HTTPHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP ObtainToken request received", slog.String("path", r.URL.Path))

	var req domain.TokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.accounts.ObtainToken(ctx, req.Username, req.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			h.respondError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, account.ErrInvalidConfirmationCode):
			h.respondError(w, r, http.StatusBadRequest, "Confirmation code is not valid")
		default:
			h.respondStoreError(w, r, err, "Failed to obtain token")
		}
		return
	}
	h.respondJSON(w, r, http.StatusOK, pair)
}

// RefreshToken выпускает новую пару токенов по refresh-токену.
func (h *HTTPHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.RefreshRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		// И невалидный токен, и исчезнувший пользователь означают одно:
		// предъявитель больше не аутентифицирован
		h.logger.WarnContext(ctx, "Refresh rejected", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	h.respondJSON(w, r, http.StatusOK, pair)
}
