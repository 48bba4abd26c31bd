package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/loan"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ProtocolsHandler handles pickup and return protocol endpoints. Protocols
// are addressed through their loan.
type ProtocolsHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
	loans  *LoansHandler
}

type protocolRequest struct {
	Description string  `json:"description"`
	Deposit     float64 `json:"refundable_deposit"`
	// Confirmed stamps the protocol as agreed on by the owner.
	Confirmed bool `json:"confirmed"`
}

func (req *protocolRequest) confirmedAt(current *time.Time) *time.Time {
	switch {
	case !req.Confirmed:
		return nil
	case current != nil:
		return current
	}
	now := time.Now().UTC()
	return &now
}

func decodeProtocol(w http.ResponseWriter, r *http.Request) (*protocolRequest, bool) {
	var req protocolRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Deposit < 0 {
		jsonError(w, http.StatusBadRequest, "refundable_deposit must not be negative")
		return nil, false
	}
	return &req, true
}

// PutPickup handles PUT /api/loans/{id}/pickup-protocol. It creates the
// protocol on first use and updates it afterwards.
func (h *ProtocolsHandler) PutPickup(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}

	// The owner hitting a locked protocol learns why; anyone else who may
	// never write it is refused by the policy below regardless of status.
	if actor, party := loan.PartyOf(l, callerID(r.Context())); party && actor == loan.ActorOwner && !loan.CanEditPickupProtocol(l.Status) {
		writeError(w, loan.ErrProtocolLocked, "failed to save pickup protocol")
		return
	}

	existing := l.PickupProtocol
	if existing == nil {
		if !authorize(w, r, h.Policy, authz.LoanCreatePickupProtocol, l) {
			return
		}
	} else if !authorize(w, r, h.Policy, authz.PickupProtocolUpdate, existing) {
		return
	}

	req, ok := decodeProtocol(w, r)
	if !ok {
		return
	}

	p := &model.PickupProtocol{Description: req.Description, AcceptedRefundableDeposit: req.Deposit}
	if existing != nil {
		p.ID = existing.ID
		p.ConfirmedAt = existing.ConfirmedAt
	}
	p.ConfirmedAt = req.confirmedAt(p.ConfirmedAt)
	if err := loan.AttachPickupProtocol(l, p); err != nil {
		writeError(w, err, "failed to save pickup protocol")
		return
	}

	status := http.StatusOK
	var err error
	if existing == nil {
		status = http.StatusCreated
		p, err = store.CreatePickupProtocol(r.Context(), h.DB, p, l.Version)
	} else {
		err = store.UpdatePickupProtocol(r.Context(), h.DB, p, l.Version)
		if err == nil {
			p, err = store.GetPickupProtocol(r.Context(), h.DB, p.ID)
		}
	}
	if err != nil {
		writeError(w, err, "failed to save pickup protocol")
		return
	}

	slog.Info("pickup protocol saved", "user", username(r.Context()), "loan", l.ID, "deposit", p.AcceptedRefundableDeposit)
	jsonResponse(w, status, p)
}

// GetPickup handles GET /api/loans/{id}/pickup-protocol.
func (h *ProtocolsHandler) GetPickup(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}
	if l.PickupProtocol == nil {
		if authorize(w, r, h.Policy, authz.LoanRead, l) {
			jsonError(w, http.StatusNotFound, "loan has no pickup protocol")
		}
		return
	}
	if !authorize(w, r, h.Policy, authz.PickupProtocolRead, l.PickupProtocol) {
		return
	}
	jsonResponse(w, http.StatusOK, l.PickupProtocol)
}

// UploadPickupImage handles POST /api/loans/{id}/pickup-protocol/images.
func (h *ProtocolsHandler) UploadPickupImage(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}
	if l.PickupProtocol == nil {
		jsonError(w, http.StatusNotFound, "loan has no pickup protocol")
		return
	}
	if !authorize(w, r, h.Policy, authz.PickupProtocolUpdate, l.PickupProtocol) {
		return
	}

	result, ok := readUpload(w, r, imaging.ProtocolPhoto)
	if !ok {
		return
	}

	img, err := store.CreateImage(r.Context(), h.DB, &model.Image{
		OwnerID:          callerID(r.Context()),
		PickupProtocolID: &l.PickupProtocol.ID,
		Data:             result.Data,
		MIME:             result.MIME,
	})
	if err != nil {
		writeError(w, err, "failed to save image")
		return
	}

	slog.Info("pickup protocol image uploaded", "user", username(r.Context()), "loan", l.ID, "image", img.ID)
	jsonResponse(w, http.StatusCreated, img)
}

// PutReturn handles PUT /api/loans/{id}/return-protocol.
func (h *ProtocolsHandler) PutReturn(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}

	// The owner hitting a locked protocol learns why; anyone else who may
	// never write it is refused by the policy below regardless of status.
	if actor, party := loan.PartyOf(l, callerID(r.Context())); party && actor == loan.ActorOwner && !loan.CanEditReturnProtocol(l.Status) {
		writeError(w, loan.ErrProtocolLocked, "failed to save return protocol")
		return
	}

	existing := l.ReturnProtocol
	if existing == nil {
		if !authorize(w, r, h.Policy, authz.LoanCreateReturnProtocol, l) {
			return
		}
	} else if !authorize(w, r, h.Policy, authz.ReturnProtocolUpdate, existing) {
		return
	}

	req, ok := decodeProtocol(w, r)
	if !ok {
		return
	}

	p := &model.ReturnProtocol{Description: req.Description, ReturnedRefundableDeposit: req.Deposit}
	if existing != nil {
		p.ID = existing.ID
		p.ConfirmedAt = existing.ConfirmedAt
	}
	p.ConfirmedAt = req.confirmedAt(p.ConfirmedAt)
	if err := loan.AttachReturnProtocol(l, p); err != nil {
		writeError(w, err, "failed to save return protocol")
		return
	}

	status := http.StatusOK
	var err error
	if existing == nil {
		status = http.StatusCreated
		p, err = store.CreateReturnProtocol(r.Context(), h.DB, p, l.Version)
	} else {
		err = store.UpdateReturnProtocol(r.Context(), h.DB, p, l.Version)
		if err == nil {
			p, err = store.GetReturnProtocol(r.Context(), h.DB, p.ID)
		}
	}
	if err != nil {
		writeError(w, err, "failed to save return protocol")
		return
	}

	slog.Info("return protocol saved", "user", username(r.Context()), "loan", l.ID, "deposit", p.ReturnedRefundableDeposit)
	jsonResponse(w, status, p)
}

// GetReturn handles GET /api/loans/{id}/return-protocol.
func (h *ProtocolsHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}
	if l.ReturnProtocol == nil {
		if authorize(w, r, h.Policy, authz.LoanRead, l) {
			jsonError(w, http.StatusNotFound, "loan has no return protocol")
		}
		return
	}
	if !authorize(w, r, h.Policy, authz.ReturnProtocolRead, l.ReturnProtocol) {
		return
	}
	jsonResponse(w, http.StatusOK, l.ReturnProtocol)
}

// UploadReturnImage handles POST /api/loans/{id}/return-protocol/images.
func (h *ProtocolsHandler) UploadReturnImage(w http.ResponseWriter, r *http.Request) {
	l := h.loans.load(w, r)
	if l == nil {
		return
	}
	if l.ReturnProtocol == nil {
		jsonError(w, http.StatusNotFound, "loan has no return protocol")
		return
	}
	if !authorize(w, r, h.Policy, authz.ReturnProtocolUpdate, l.ReturnProtocol) {
		return
	}

	result, ok := readUpload(w, r, imaging.ProtocolPhoto)
	if !ok {
		return
	}

	img, err := store.CreateImage(r.Context(), h.DB, &model.Image{
		OwnerID:          callerID(r.Context()),
		ReturnProtocolID: &l.ReturnProtocol.ID,
		Data:             result.Data,
		MIME:             result.MIME,
	})
	if err != nil {
		writeError(w, err, "failed to save image")
		return
	}

	slog.Info("return protocol image uploaded", "user", username(r.Context()), "loan", l.ID, "image", img.ID)
	jsonResponse(w, http.StatusCreated, img)
}
