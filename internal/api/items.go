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

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
}

type itemRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  *int64           `json:"category_id"`
	PricePerDay float64          `json:"price_per_day"`
	Status      model.ItemStatus `json:"status"`
}

func (req *itemRequest) validate() string {
	switch {
	case req.Name == "":
		return "name required"
	case req.PricePerDay < 0:
		return "price_per_day must not be negative"
	}
	return ""
}

// List handles GET /api/items. Only items the caller may read are returned.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f store.ItemFilter
	q := r.URL.Query()
	f.Status = model.ItemStatus(q.Get("status"))
	f.OwnerID, _ = strconv.ParseInt(q.Get("owner"), 10, 64)
	f.CategoryID, _ = strconv.ParseInt(q.Get("category"), 10, 64)

	items, err := store.ListItems(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, err, "failed to list items")
		return
	}

	visible := []model.Item{}
	for i := range items {
		if allowed(r, h.Policy, authz.ItemRead, &items[i]) {
			visible = append(visible, items[i])
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}

// Create handles POST /api/items. New items wait for admin approval.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	id := GetIdentity(r.Context())
	draft := &model.Item{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PricePerDay: req.PricePerDay,
		Status:      model.ItemStatusApproving,
	}
	if id != nil {
		draft.OwnerID = id.UserID
	}
	if !authorize(w, r, h.Policy, authz.ItemCreate, draft) {
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, draft)
	if err != nil {
		writeError(w, err, "failed to create item")
		return
	}

	slog.Info("item created", "user", username(r.Context()), "item", item.Name, "id", item.ID)
	jsonResponse(w, http.StatusCreated, item)
}

// load fetches the item named by the path, writing 4xx/5xx on failure.
func (h *ItemsHandler) load(w http.ResponseWriter, r *http.Request) *model.Item {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get item")
		return nil
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
	}
	return item
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil || !authorize(w, r, h.Policy, authz.ItemRead, item) {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Only admins change the listing status;
// an owner's edit sends a denied item back for approval.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil || !authorize(w, r, h.Policy, authz.ItemUpdate, item) {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	isAdmin := GetIdentity(r.Context()).HasRole(model.RoleAdmin)
	switch {
	case req.Status == "" || req.Status == item.Status:
	case !isAdmin:
		jsonError(w, http.StatusForbidden, "only admins change item status")
		return
	case !req.Status.Valid() || req.Status == model.ItemStatusDeleted:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	default:
		item.Status = req.Status
	}
	if !isAdmin && item.Status == model.ItemStatusDenied {
		item.Status = model.ItemStatusApproving
	}

	item.Name = req.Name
	item.Description = req.Description
	item.CategoryID = req.CategoryID
	item.PricePerDay = req.PricePerDay

	if err := store.UpdateItem(r.Context(), h.DB, item); err != nil {
		writeError(w, err, "failed to update item")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil {
		writeError(w, err, "failed to get item")
		return
	}

	slog.Info("item updated", "user", username(r.Context()), "item", item.Name, "status", item.Status)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil || !authorize(w, r, h.Policy, authz.ItemDelete, item) {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		writeError(w, err, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", username(r.Context()), "item", item.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles POST /api/items/{id}/images.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil || !authorize(w, r, h.Policy, authz.ItemCreateImage, item) {
		return
	}

	result, ok := readUpload(w, r, imaging.ItemPhoto)
	if !ok {
		return
	}

	img, err := store.CreateImage(r.Context(), h.DB, &model.Image{
		OwnerID: callerID(r.Context()),
		ItemID:  &item.ID,
		Data:    result.Data,
		MIME:    result.MIME,
	})
	if err != nil {
		writeError(w, err, "failed to save image")
		return
	}

	slog.Info("item image uploaded", "user", username(r.Context()), "item", item.Name, "image", img.ID)
	jsonResponse(w, http.StatusCreated, img)
}

// ListImages handles GET /api/items/{id}/images.
func (h *ItemsHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil || !authorize(w, r, h.Policy, authz.ItemRead, item) {
		return
	}

	images, err := store.ListImages(r.Context(), h.DB, store.ImageParent{ItemID: item.ID})
	if err != nil {
		writeError(w, err, "failed to list images")
		return
	}

	visible := []model.Image{}
	for i := range images {
		images[i].Item = item
		if allowed(r, h.Policy, authz.ImageRead, &images[i]) {
			visible = append(visible, images[i])
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}
