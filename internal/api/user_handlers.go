package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Lagmas/api-yamdb/internal/account"
	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/policy"
)

// ListUsers возвращает страницу пользователей. Только администратор.
func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanAdministerUsers(actorFromContext(ctx)) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	users, total, err := h.users.List(ctx, parseListParams(r))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to list users")
		return
	}
	h.respondJSON(w, r, http.StatusOK, listResponse{Count: total, Results: users})
}

// CreateUser создает пользователя от имени администратора. Код подтверждения
// не высылается: учетная запись получает токены обычным путем через signup.
func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanAdministerUsers(actorFromContext(ctx)) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	var req domain.CreateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Username == "me" {
		h.respondError(w, r, http.StatusBadRequest, account.ErrReservedUsername.Error())
		return
	}

	role := domain.RoleUser
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		Bio:       req.Bio,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.respondStoreError(w, r, err, "Failed to create user")
		return
	}
	h.logger.InfoContext(ctx, "User created by admin",
		slog.String("userID", user.ID), slog.String("username", user.Username))
	h.respondJSON(w, r, http.StatusCreated, user)
}

// GetUser возвращает пользователя по username. Только администратор.
func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanAdministerUsers(actorFromContext(ctx)) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	user, err := h.users.GetByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get user")
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// UpdateUser частично обновляет пользователя, включая роль.
// Только администратор.
func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanAdministerUsers(actorFromContext(ctx)) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	user, err := h.users.GetByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to get user")
		return
	}

	var req domain.UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	applyProfilePatch(user, req.Username, req.Email, req.Bio, req.FirstName, req.LastName)
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}

	if err := h.users.Update(ctx, user); err != nil {
		h.respondStoreError(w, r, err, "Failed to update user")
		return
	}
	h.logger.InfoContext(ctx, "User updated by admin", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, user)
}

// DeleteUser удаляет пользователя вместе с его отзывами и комментариями.
// Только администратор.
func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanAdministerUsers(actorFromContext(ctx)) {
		h.respondError(w, r, http.StatusForbidden, "Admin role required")
		return
	}

	username := mux.Vars(r)["username"]
	if err := h.users.Delete(ctx, username); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete user")
		return
	}
	h.logger.InfoContext(ctx, "User deleted by admin", slog.String("username", username))
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// Me возвращает профиль действующего пользователя.
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, actorFromContext(r.Context()))
}

// UpdateMe частично обновляет собственный профиль. Роль этим запросом
// изменить нельзя - поле role в теле просто отсутствует.
func (h *HTTPHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)

	var req domain.UpdateMeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	applyProfilePatch(actor, req.Username, req.Email, req.Bio, req.FirstName, req.LastName)

	if err := h.users.Update(ctx, actor); err != nil {
		h.respondStoreError(w, r, err, "Failed to update profile")
		return
	}
	h.logger.InfoContext(ctx, "Profile updated", slog.String("userID", actor.ID))
	h.respondJSON(w, r, http.StatusOK, actor)
}

// applyProfilePatch переносит непустые поля частичного обновления в модель.
func applyProfilePatch(user *domain.User, username, email, bio, firstName, lastName *string) {
	if username != nil {
		user.Username = *username
	}
	if email != nil {
		user.Email = *email
	}
	if bio != nil {
		user.Bio = *bio
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
}
