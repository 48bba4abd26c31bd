package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ImagesHandler serves and removes stored images.
type ImagesHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
}

// readUpload reads the multipart "image" field and normalizes it with p.
func readUpload(w http.ResponseWriter, r *http.Request, p imaging.Preset) (*imaging.ProcessResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return nil, false
	}
	defer file.Close()

	result, err := imaging.Process(file, p)
	if err != nil {
		writeError(w, err, "failed to process image")
		return nil, false
	}
	return result, true
}

// serveImage writes the raw image bytes.
func serveImage(w http.ResponseWriter, img *model.Image, public bool) {
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if public {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	} else {
		w.Header().Set("Cache-Control", "private, no-store")
	}
	w.Write(img.Data)
}

func (h *ImagesHandler) load(w http.ResponseWriter, r *http.Request) *model.Image {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return nil
	}
	img, err := store.GetImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get image")
		return nil
	}
	if img == nil {
		jsonError(w, http.StatusNotFound, "image not found")
	}
	return img
}

// Get handles GET /api/images/{id}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	img := h.load(w, r)
	if img == nil || !authorize(w, r, h.Policy, authz.ImageRead, img) {
		return
	}
	serveImage(w, img, img.Item != nil && img.Item.Status == model.ItemStatusPublic)
}

// Delete handles DELETE /api/images/{id}.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	img := h.load(w, r)
	if img == nil || !authorize(w, r, h.Policy, authz.ImageDelete, img) {
		return
	}

	if err := store.DeleteImage(r.Context(), h.DB, img.ID); err != nil {
		writeError(w, err, "failed to delete image")
		return
	}

	slog.Info("image deleted", "user", username(r.Context()), "image", img.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image deleted"})
}
