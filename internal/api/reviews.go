package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ReviewsHandler handles review endpoints.
type ReviewsHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
	loans  *LoansHandler
}

type reviewRequest struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

func decodeReview(w http.ResponseWriter, r *http.Request) (*reviewRequest, bool) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := model.ValidateRating(req.Rating); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

// Create handles POST /api/loans/{id}/reviews.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil || !authorize(w, r, h.Policy, authz.LoanCreateReview, l) {
		return
	}

	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	review, err := store.CreateReview(r.Context(), h.DB, l.ID, callerID(r.Context()), req.Comment, req.Rating)
	if err != nil {
		writeError(w, err, "failed to create review")
		return
	}

	slog.Info("review created", "user", username(r.Context()), "loan", l.ID, "rating", review.Rating)
	jsonResponse(w, http.StatusCreated, review)
}

// ListForLoan handles GET /api/loans/{id}/reviews.
func (h *ReviewsHandler) ListForLoan(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}

	visible := []model.Review{}
	for i := range l.Reviews {
		l.Reviews[i].Loan = l
		if allowed(r, h.Policy, authz.ReviewRead, &l.Reviews[i]) {
			visible = append(visible, l.Reviews[i])
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}

func (h *ReviewsHandler) load(w http.ResponseWriter, r *http.Request) *model.Review {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid review id")
		return nil
	}
	review, err := store.GetReview(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get review")
		return nil
	}
	if review == nil {
		jsonError(w, http.StatusNotFound, "review not found")
	}
	return review
}

// Get handles GET /api/reviews/{id}.
func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	review := h.load(w, r)
	if review == nil || !authorize(w, r, h.Policy, authz.ReviewRead, review) {
		return
	}
	jsonResponse(w, http.StatusOK, review)
}

// Update handles PUT /api/reviews/{id}.
func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	review := h.load(w, r)
	if review == nil || !authorize(w, r, h.Policy, authz.ReviewUpdate, review) {
		return
	}

	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	if err := store.UpdateReview(r.Context(), h.DB, review.ID, req.Comment, req.Rating); err != nil {
		writeError(w, err, "failed to update review")
		return
	}
	review.Comment, review.Rating = req.Comment, req.Rating

	slog.Info("review updated", "user", username(r.Context()), "review", review.ID, "rating", review.Rating)
	jsonResponse(w, http.StatusOK, review)
}

// Delete handles DELETE /api/reviews/{id}.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	review := h.load(w, r)
	if review == nil || !authorize(w, r, h.Policy, authz.ReviewDelete, review) {
		return
	}

	if err := store.DeleteReview(r.Context(), h.DB, review.ID); err != nil {
		writeError(w, err, "failed to delete review")
		return
	}

	slog.Info("review deleted", "user", username(r.Context()), "review", review.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
