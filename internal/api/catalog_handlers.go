package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/policy"
	"github.com/Lagmas/api-yamdb/internal/store"
)

// ListCategories возвращает страницу категорий. Доступно всем.
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, total, err := h.catalog.ListCategories(r.Context(), parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list categories")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: categories})
}

// CreateCategory создает категорию. Только администратор.
func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	if !policy.CanManageCatalog(actor, policy.ActionCreate) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	var req domain.CreateCategoryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	category := &domain.Category{ID: uuid.NewString(), Name: req.Name, Slug: req.Slug}
	if err := h.catalog.CreateCategory(ctx, category); err != nil {
		h.respondStoreError(w, r, err, "Failed to create category")
		return
	}
	h.logger.InfoContext(ctx, "Category created", slog.String("slug", category.Slug))
	h.respondJSON(w, r, http.StatusCreated, category)
}

// DeleteCategory удаляет категорию по слагу. Только администратор.
// Произведения категории не удаляются - ссылка на нее обнуляется.
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionDelete) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	slug := mux.Vars(r)["slug"]
	if err := h.catalog.DeleteCategory(ctx, slug); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete category")
		return
	}
	h.logger.InfoContext(ctx, "Category deleted", slog.String("slug", slug))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// ListGenres возвращает страницу жанров. Доступно всем.
func (h *HTTPHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, total, err := h.catalog.ListGenres(r.Context(), parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list genres")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: genres})
}

// CreateGenre создает жанр. Только администратор.
func (h *HTTPHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionCreate) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	var req domain.CreateGenreRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	genre := &domain.Genre{ID: uuid.NewString(), Name: req.Name, Slug: req.Slug}
	if err := h.catalog.CreateGenre(ctx, genre); err != nil {
		h.respondStoreError(w, r, err, "Failed to create genre")
		return
	}
	h.logger.InfoContext(ctx, "Genre created", slog.String("slug", genre.Slug))
	h.respondJSON(w, r, http.StatusCreated, genre)
}

// DeleteGenre удаляет жанр по слагу. Только администратор.
func (h *HTTPHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionDelete) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	slug := mux.Vars(r)["slug"]
	if err := h.catalog.DeleteGenre(ctx, slug); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete genre")
		return
	}
	h.logger.InfoContext(ctx, "Genre deleted", slog.String("slug", slug))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// ListTitles возвращает страницу произведений с производным рейтингом.
// Доступно всем. Поддерживает фильтры category, genre, name и year.
func (h *HTTPHandler) ListTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.TitleFilter{
		CategorySlug: query.Get("category"),
		GenreSlug:    query.Get("genre"),
		Name:         query.Get("name"),
	}
	if year, err := strconv.Atoi(query.Get("year")); err == nil {
		filter.Year = year
	}

	titles, total, err := h.catalog.ListTitles(r.Context(), filter, parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list titles")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: titles})
}

// GetTitle возвращает произведение по ID вместе с рейтингом. Доступно всем.
func (h *HTTPHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	title, err := h.catalog.GetTitleByID(r.Context(), mux.Vars(r)["title_id"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get title")
		return
	}
	h.respondJSON(w, r, http.StatusOK, title)
}

// CreateTitle создает произведение. Только администратор.
func (h *HTTPHandler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionCreate) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	var req domain.CreateTitleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := domain.ValidateYear(req.Year); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	title := &domain.Title{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		GenreSlugs:  pq.StringArray(req.Genres),
	}
	if req.Category != "" {
		title.CategorySlug = &req.Category
	}

	if err := h.catalog.CreateTitle(ctx, title); err != nil {
		// Ссылка на несуществующую категорию или жанр - ошибка входных данных
		if errors.Is(err, store.ErrCategoryNotFound) || errors.Is(err, store.ErrGenreNotFound) {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.respondStoreError(w, r, err, "Failed to create title")
		return
	}
	h.logger.InfoContext(ctx, "Title created", slog.String("titleID", title.ID))
	h.respondJSON(w, r, http.StatusCreated, title)
}

// UpdateTitle частично обновляет произведение. Только администратор.
func (h *HTTPHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionUpdate) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	title, err := h.catalog.GetTitleByID(ctx, mux.Vars(r)["title_id"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get title")
		return
	}

	var req domain.UpdateTitleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := domain.ValidateYear(*req.Year); err != nil {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategorySlug = nil
		} else {
			title.CategorySlug = req.Category
		}
	}
	if req.Genres != nil {
		title.GenreSlugs = pq.StringArray(req.Genres)
	}

	if err := h.catalog.UpdateTitle(ctx, title); err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) || errors.Is(err, store.ErrGenreNotFound) {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.respondStoreError(w, r, err, "Failed to update title")
		return
	}
	h.logger.InfoContext(ctx, "Title updated", slog.String("titleID", title.ID))
	h.respondJSON(w, r, http.StatusOK, title)
}

// DeleteTitle удаляет произведение вместе с отзывами и их комментариями.
// Только администратор.
func (h *HTTPHandler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanManageCatalog(actorFromContext(ctx), policy.ActionDelete) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	titleID := mux.Vars(r)["title_id"]
	if err := h.catalog.DeleteTitle(ctx, titleID); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete title")
		return
	}
	h.logger.InfoContext(ctx, "Title deleted", slog.String("titleID", titleID))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}
