package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/policy"
)

// ListReviews возвращает страницу отзывов произведения от новых к старым.
// Доступно всем.
func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	titleID := mux.Vars(r)["title_id"]

	if _, err := h.catalog.GetTitleByID(ctx, titleID); err != nil {
		h.respondStoreError(w, r, err, "Failed to get title")
		return
	}

	reviews, total, err := h.reviews.ListReviewsByTitle(ctx, titleID, parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list reviews")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: reviews})
}

// CreateReview создает отзыв на произведение от имени действующего
// пользователя. Второй отзыв того же автора отклоняется конфликтом.
func (h *HTTPHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionCreate, "") {
		h.respondError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	titleID := mux.Vars(r)["title_id"]
	if _, err := h.catalog.GetTitleByID(ctx, titleID); err != nil {
		h.respondStoreError(w, r, err, "Failed to get title")
		return
	}

	var req domain.CreateReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := domain.ValidateScore(req.Score); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	review := &domain.Review{
		ID:             uuid.NewString(),
		TitleID:        titleID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
		Score:          req.Score,
	}
	if err := h.reviews.CreateReview(ctx, review); err != nil {
		h.respondStoreError(w, r, err, "Failed to create review")
		return
	}
	h.logger.InfoContext(ctx, "Review created",
		slog.String("reviewID", review.ID), slog.String("titleID", titleID), slog.String("authorID", actor.ID))
	h.respondJSON(w, r, http.StatusCreated, review)
}

// getTitleReview достает отзыв и проверяет его принадлежность произведению
// из пути запроса. При любом несоответствии отвечает 404 и возвращает nil.
func (h *HTTPHandler) getTitleReview(w http.ResponseWriter, r *http.Request) *domain.Review {
	vars := mux.Vars(r)
	review, err := h.reviews.GetReviewByID(r.Context(), vars["review_id"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get review")
		return nil
	}
	if review.TitleID != vars["title_id"] {
		h.respondError(w, r, http.StatusNotFound, "review not found")
		return nil
	}
	return review
}

// GetReview возвращает отзыв по ID. Доступно всем.
func (h *HTTPHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	if review := h.getTitleReview(w, r); review != nil {
		h.respondJSON(w, r, http.StatusOK, review)
	}
}

// UpdateReview частично обновляет отзыв. Доступно автору, модератору
// или администратору.
func (h *HTTPHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	review := h.getTitleReview(w, r)
	if review == nil {
		return
	}

	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionUpdate, review.AuthorID) {
		h.respondError(w, r, http.StatusForbidden, "Not allowed to modify this review")
		return
	}

	var req domain.UpdateReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := domain.ValidateScore(*req.Score); err != nil {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		review.Score = *req.Score
	}

	if err := h.reviews.UpdateReview(ctx, review); err != nil {
		h.respondStoreError(w, r, err, "Failed to update review")
		return
	}
	h.logger.InfoContext(ctx, "Review updated", slog.String("reviewID", review.ID))
	h.respondJSON(w, r, http.StatusOK, review)
}

// DeleteReview удаляет отзыв вместе с комментариями. Доступно автору,
// модератору или администратору.
func (h *HTTPHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	review := h.getTitleReview(w, r)
	if review == nil {
		return
	}

	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionDelete, review.AuthorID) {
		h.respondError(w, r, http.StatusForbidden, "Not allowed to delete this review")
		return
	}

	if err := h.reviews.DeleteReview(ctx, review.ID); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete review")
		return
	}
	h.logger.InfoContext(ctx, "Review deleted", slog.String("reviewID", review.ID))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// ListComments возвращает страницу комментариев отзыва от новых к старым.
// Доступно всем.
func (h *HTTPHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	review := h.getTitleReview(w, r)
	if review == nil {
		return
	}

	comments, total, err := h.reviews.ListCommentsByReview(ctx, review.ID, parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list comments")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: comments})
}

// CreateComment создает комментарий к отзыву от имени действующего
// пользователя.
func (h *HTTPHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionCreate, "") {
		h.respondError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	review := h.getTitleReview(w, r)
	if review == nil {
		return
	}

	var req domain.CreateCommentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	comment := &domain.Comment{
		ID:             uuid.NewString(),
		ReviewID:       review.ID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
	}
	if err := h.reviews.CreateComment(ctx, comment); err != nil {
		h.respondStoreError(w, r, err, "Failed to create comment")
		return
	}
	h.logger.InfoContext(ctx, "Comment created",
		slog.String("commentID", comment.ID), slog.String("reviewID", review.ID))
	h.respondJSON(w, r, http.StatusCreated, comment)
}

// getReviewComment достает комментарий и проверяет его принадлежность
// отзыву и произведению из пути запроса.
func (h *HTTPHandler) getReviewComment(w http.ResponseWriter, r *http.Request) *domain.Comment {
	review := h.getTitleReview(w, r)
	if review == nil {
		return nil
	}
	comment, err := h.reviews.GetCommentByID(r.Context(), mux.Vars(r)["comment_id"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get comment")
		return nil
	}
	if comment.ReviewID != review.ID {
		h.respondError(w, r, http.StatusNotFound, "comment not found")
		return nil
	}
	return comment
}

// GetComment возвращает комментарий по ID. Доступно всем.
func (h *HTTPHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	if comment := h.getReviewComment(w, r); comment != nil {
		h.respondJSON(w, r, http.StatusOK, comment)
	}
}

// UpdateComment обновляет комментарий. Доступно автору, модератору
// или администратору.
func (h *HTTPHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment := h.getReviewComment(w, r)
	if comment == nil {
		return
	}

	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionUpdate, comment.AuthorID) {
		h.respondError(w, r, http.StatusForbidden, "Not allowed to modify this comment")
		return
	}

	var req domain.UpdateCommentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	comment.Text = req.Text

	if err := h.reviews.UpdateComment(ctx, comment); err != nil {
		h.respondStoreError(w, r, err, "Failed to update comment")
		return
	}
	h.respondJSON(w, r, http.StatusOK, comment)
}

// DeleteComment удаляет комментарий. Доступно автору, модератору
// или администратору.
func (h *HTTPHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment := h.getReviewComment(w, r)
	if comment == nil {
		return
	}

	actor := actorFromContext(ctx)
	if !policy.CanWriteContent(actor, policy.ActionDelete, comment.AuthorID) {
		h.respondError(w, r, http.StatusForbidden, "Not allowed to delete this comment")
		return
	}

	if err := h.reviews.DeleteComment(ctx, comment.ID); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete comment")
		return
	}
	h.logger.InfoContext(ctx, "Comment deleted", slog.String("commentID", comment.ID))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}
