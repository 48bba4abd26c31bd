package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// UsersHandler is the administrator's account management. Every route is
// mounted behind RequireRole(RoleAdmin).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type rolesRequest struct {
	Roles []string `json:"roles"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// load resolves {id} to a live account or answers 400/404.
func (h *UsersHandler) load(w http.ResponseWriter, r *http.Request) *model.User {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return nil
	}
	u, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get user")
		return nil
	}
	if u == nil || u.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return nil
	}
	return u
}

// List handles GET /api/users, optionally narrowed with ?role=.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	var role model.Role
	if q := r.URL.Query().Get("role"); q != "" {
		roles, err := model.ParseRoles([]string{q})
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		role = roles[0]
	}

	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, err, "failed to list users")
		return
	}

	out := []model.User{}
	for _, u := range users {
		if role == "" || u.HasRole(role) {
			out = append(out, u)
		}
	}
	jsonResponse(w, http.StatusOK, out)
}

// Create handles POST /api/users. Unlike registration the administrator
// picks the roles, including admin.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Roles) == 0 {
		jsonError(w, http.StatusBadRequest, "username and roles required")
		return
	}
	roles, err := model.ParseRoles(req.Roles)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		writeError(w, err, "failed to create user")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	u, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, roles)
	if err != nil {
		writeError(w, err, "failed to create user")
		return
	}

	slog.Info("user created", "user", username(r.Context()), "new_user", u.Username, "roles", roles)
	jsonResponse(w, http.StatusCreated, u)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if u := h.load(w, r); u != nil {
		jsonResponse(w, http.StatusOK, u)
	}
}

// Update handles PUT /api/users/{id}, replacing the role set.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := h.load(w, r)
	if u == nil {
		return
	}

	var req rolesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	roles, err := model.ParseRoles(req.Roles)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The last thing an admin should be able to do is lock themselves out.
	if u.ID == callerID(r.Context()) && !slices.Contains(roles, model.RoleAdmin) {
		jsonError(w, http.StatusBadRequest, "cannot remove your own admin role")
		return
	}

	if err := store.SetUserRoles(r.Context(), h.DB, u.ID, roles); err != nil {
		writeError(w, err, "failed to update user")
		return
	}
	u.Roles = roles

	slog.Info("user roles updated", "user", username(r.Context()), "target_user", u.Username, "roles", roles)
	jsonResponse(w, http.StatusOK, u)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	u := h.load(w, r)
	if u == nil {
		return
	}

	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, u.ID, hash); err != nil {
		writeError(w, err, "failed to reset password")
		return
	}

	slog.Info("user password reset", "user", username(r.Context()), "target_user", u.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}. The account is soft-deleted so
// loans and reviews keep their parties.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u := h.load(w, r)
	if u == nil {
		return
	}
	if u.ID == callerID(r.Context()) {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, u.ID); err != nil {
		writeError(w, err, "failed to delete user")
		return
	}

	slog.Info("user deleted", "user", username(r.Context()), "deleted_user", u.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
