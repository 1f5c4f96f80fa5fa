package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Lagmas/api-yamdb/internal/account"
	"github.com/Lagmas/api-yamdb/internal/store"
	"github.com/Lagmas/api-yamdb/pkg/auth"
)

// HTTPHandler обрабатывает HTTP-запросы API.
// Вся логика авторизации делегируется пакету policy, хранение - пакету
// store; здесь остается только трансляция HTTP в вызовы ядра и обратно.
type HTTPHandler struct {
	users        store.UserStore
	catalog      store.CatalogStore
	reviews      store.ReviewStore
	accounts     *account.Service
	logger       *slog.Logger
	validator    *validator.Validate
	tokenManager auth.TokenManager
}

// NewHTTPHandler создает новый экземпляр HTTPHandler.
func NewHTTPHandler(
	users store.UserStore,
	catalog store.CatalogStore,
	reviews store.ReviewStore,
	accounts *account.Service,
	logger *slog.Logger,
	validate *validator.Validate,
	tokenManager auth.TokenManager,
) *HTTPHandler {
	return &HTTPHandler{
		users:        users,
		catalog:      catalog,
		reviews:      reviews,
		accounts:     accounts,
		logger:       logger,
		validator:    validate,
		tokenManager: tokenManager,
	}
}

// listResponse единый конверт постраничных списков.
type listResponse struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// decodeAndValidate разбирает JSON-тело запроса и прогоняет его через
// валидатор. При ошибке сам отвечает 400 и возвращает false.
func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, dst); err != nil {
		h.logger.WarnContext(ctx, "Request validation failed",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// respondStoreError транслирует ошибки хранилищ в HTTP-статусы:
// не найдено - 404, нарушение уникальности - 409, остальное - 500.
func (h *HTTPHandler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrGenreNotFound),
		errors.Is(err, store.ErrTitleNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrCommentNotFound):
		h.respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUserAlreadyExists),
		errors.Is(err, store.ErrSlugAlreadyExists),
		errors.Is(err, store.ErrDuplicateReview):
		h.respondError(w, r, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), fallback,
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, fallback)
	}
}

// parseListParams извлекает параметры пагинации из строки запроса.
// Значения за пределами допустимого нормализует хранилище.
func parseListParams(r *http.Request) store.ListParams {
	var params store.ListParams
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		params.PageSize = size
	}
	return params
}
