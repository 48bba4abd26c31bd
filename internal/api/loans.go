package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/loan"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// LoansHandler handles loan endpoints.
type LoansHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
}

type createLoanRequest struct {
	ItemID int64     `json:"item_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

type updateStatusRequest struct {
	Status model.LoanStatus `json:"status"`
	// Version, if set, must match the loan the client last saw.
	Version int64 `json:"version"`
	// Actor is the party an administrator who is not on the loan acts for.
	// Parties always act as themselves and leave it empty.
	Actor loan.Actor `json:"actor"`
}

// loanResponse adds the moves the caller can make next.
type loanResponse struct {
	*model.Loan
	NextStatuses []model.LoanStatus `json:"next_statuses"`
}

func newLoanResponse(l *model.Loan, id *authz.Identity) loanResponse {
	resp := loanResponse{Loan: l, NextStatuses: []model.LoanStatus{}}
	if id == nil {
		return resp
	}
	if actor, ok := loan.PartyOf(l, id.UserID); ok {
		if next := loan.Targets(l.Status, actor); next != nil {
			resp.NextStatuses = next
		}
	}
	return resp
}

// Create handles POST /api/loans.
func (h *LoansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 || req.From.IsZero() || req.To.IsZero() {
		jsonError(w, http.StatusBadRequest, "item_id, from and to required")
		return
	}
	if req.To.Before(req.From) {
		jsonError(w, http.StatusBadRequest, "loan must not end before it starts")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		writeError(w, err, "failed to get item")
		return
	}
	if item == nil || !allowed(r, h.Policy, authz.ItemRead, item) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	id := GetIdentity(r.Context())
	draft := &model.Loan{ItemID: item.ID, Item: item, Status: model.LoanStatusInquired, From: req.From, To: req.To}
	if id != nil {
		draft.TenantID = id.UserID
	}
	if !authorize(w, r, h.Policy, authz.LoanCreate, draft) {
		return
	}

	if item.Status != model.ItemStatusPublic {
		jsonError(w, http.StatusUnprocessableEntity, "item is not available for rent")
		return
	}
	if item.OwnerID == draft.TenantID {
		jsonError(w, http.StatusBadRequest, "cannot rent your own item")
		return
	}

	l, err := store.CreateLoan(r.Context(), h.DB, item.ID, draft.TenantID, req.From, req.To)
	if err != nil {
		writeError(w, err, "failed to create loan")
		return
	}

	slog.Info("loan inquired", "user", username(r.Context()), "loan", l.ID, "item", item.Name)
	jsonResponse(w, http.StatusCreated, newLoanResponse(l, id))
}

// List handles GET /api/loans. Admins see every loan, others the loans they
// are a party to.
func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	scope := id.UserID
	if id.HasRole(model.RoleAdmin) && r.URL.Query().Get("mine") == "" {
		scope = 0
	}

	loans, err := store.ListLoans(r.Context(), h.DB, scope)
	if err != nil {
		writeError(w, err, "failed to list loans")
		return
	}

	resp := []loanResponse{}
	for i := range loans {
		if allowed(r, h.Policy, authz.LoanRead, &loans[i]) {
			resp = append(resp, newLoanResponse(&loans[i], id))
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

// load fetches the loan named by the path with all relationships.
func (h *LoansHandler) load(w http.ResponseWriter, r *http.Request) *model.Loan {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid loan id")
		return nil
	}
	l, err := store.GetLoan(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get loan")
		return nil
	}
	if l == nil {
		jsonError(w, http.StatusNotFound, "loan not found")
	}
	return l
}

// Get handles GET /api/loans/{id}.
func (h *LoansHandler) Get(w http.ResponseWriter, r *http.Request) {
	l := h.load(w, r)
	if l == nil || !authorize(w, r, h.Policy, authz.LoanRead, l) {
		return
	}
	jsonResponse(w, http.StatusOK, newLoanResponse(l, GetIdentity(r.Context())))
}

// UpdateStatus handles PUT /api/loans/{id}/status. A party acts as whichever
// side they are on; an administrator outside the loan names the side in
// "actor". The state machine decides legality either way.
func (h *LoansHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	l := h.load(w, r)
	if l == nil || !authorize(w, r, h.Policy, authz.LoanUpdate, l) {
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Version != 0 && req.Version != l.Version {
		writeError(w, store.ErrVersionConflict, "failed to update loan")
		return
	}

	id := GetIdentity(r.Context())
	from, version := l.Status, l.Version
	var err error
	if _, party := loan.PartyOf(l, id.UserID); !party && id.HasRole(model.RoleAdmin) {
		if req.Actor != loan.ActorOwner && req.Actor != loan.ActorTenant {
			jsonError(w, http.StatusBadRequest, "actor (owner or tenant) required when acting for a party")
			return
		}
		err = loan.Apply(l, req.Actor, req.Status)
	} else {
		err = loan.Dispatch(l, id.UserID, req.Status)
	}
	if err != nil {
		slog.Warn("loan transition rejected", "user", username(r.Context()), "loan", l.ID, "from", from, "to", req.Status, "actor", req.Actor, "error", err)
		writeError(w, err, "failed to update loan")
		return
	}

	if l.Status != from {
		if err := store.UpdateLoanStatus(r.Context(), h.DB, l.ID, version, l.Status); err != nil {
			writeError(w, err, "failed to update loan")
			return
		}
		slog.Info("loan status changed", "user", username(r.Context()), "loan", l.ID, "from", from, "to", l.Status)
	}

	updated, err := store.GetLoan(r.Context(), h.DB, l.ID)
	if err != nil {
		writeError(w, err, "failed to get loan")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "loan not found")
		return
	}
	jsonResponse(w, http.StatusOK, newLoanResponse(updated, id))
}
