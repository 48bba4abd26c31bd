package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ProfilesHandler handles profile endpoints. Profiles are keyed by user id.
type ProfilesHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

func (h *ProfilesHandler) load(w http.ResponseWriter, r *http.Request) *model.Profile {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return nil
	}
	p, err := store.GetProfile(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get profile")
		return nil
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "profile not found")
	}
	return p
}

// Get handles GET /api/profiles/{id}.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, r)
	if p == nil || !authorize(w, r, h.Policy, authz.ProfileRead, p) {
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PUT /api/profiles/{id}.
func (h *ProfilesHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, r)
	if p == nil || !authorize(w, r, h.Policy, authz.ProfileUpdate, p) {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DisplayName == "" {
		jsonError(w, http.StatusBadRequest, "display_name required")
		return
	}

	if err := store.UpdateProfile(r.Context(), h.DB, p.UserID, req.DisplayName, req.Bio); err != nil {
		writeError(w, err, "failed to update profile")
		return
	}
	p.DisplayName, p.Bio = req.DisplayName, req.Bio

	slog.Info("profile updated", "user", username(r.Context()), "profile", p.Username)
	jsonResponse(w, http.StatusOK, p)
}

// PutImage handles PUT /api/profiles/{id}/image.
func (h *ProfilesHandler) PutImage(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, r)
	if p == nil || !authorize(w, r, h.Policy, authz.ProfileUpdate, p) {
		return
	}

	result, ok := readUpload(w, r, imaging.Avatar)
	if !ok {
		return
	}

	img, err := store.SetProfileImage(r.Context(), h.DB, p.UserID, result.Data, result.MIME)
	if err != nil {
		writeError(w, err, "failed to save profile image")
		return
	}

	slog.Info("profile image updated", "user", username(r.Context()), "profile", p.Username)
	jsonResponse(w, http.StatusOK, img)
}

// GetImage handles GET /api/profiles/{id}/image. Avatars are visible to
// whoever may read the profile.
func (h *ProfilesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, r)
	if p == nil || !authorize(w, r, h.Policy, authz.ProfileRead, p) {
		return
	}
	if p.ImageID == nil {
		jsonError(w, http.StatusNotFound, "profile has no image")
		return
	}

	img, err := store.GetImage(r.Context(), h.DB, *p.ImageID)
	if err != nil {
		writeError(w, err, "failed to get image")
		return
	}
	if img == nil {
		jsonError(w, http.StatusNotFound, "profile has no image")
		return
	}
	serveImage(w, img, false)
}
