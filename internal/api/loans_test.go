package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

type loanBody struct {
	model.Loan
	NextStatuses []model.LoanStatus `json:"next_statuses"`
}

func (s *testServer) inquire(t *testing.T, tenantToken string, itemID int64) loanBody {
	t.Helper()
	from := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	var l loanBody
	s.call(t, "POST", "/api/loans", tenantToken,
		map[string]any{"item_id": itemID, "from": from, "to": from.Add(48 * time.Hour)}, http.StatusCreated, &l)
	return l
}

func (s *testServer) move(t *testing.T, token string, loanID int64, to model.LoanStatus, want int) loanBody {
	t.Helper()
	var l loanBody
	var out any
	if want == http.StatusOK {
		out = &l
	}
	s.call(t, "PUT", fmt.Sprintf("/api/loans/%d/status", loanID), token, map[string]any{"status": to}, want, out)
	return l
}

func TestLoanLifecycle(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	item := server.publicItem(t, ownerToken, "Tent")

	l := server.inquire(t, tenantToken, item.ID)
	if l.Status != model.LoanStatusInquired {
		t.Fatalf("expected inquired, got %q", l.Status)
	}
	loanPath := fmt.Sprintf("/api/loans/%d", l.ID)

	// The owner accepts, prepares the pickup protocol and hands over.
	l = server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusOK)
	server.call(t, "PUT", loanPath+"/pickup-protocol", ownerToken,
		map[string]any{"description": "all pegs present", "refundable_deposit": 50}, http.StatusCreated, nil)
	l = server.move(t, ownerToken, l.ID, model.LoanStatusPreparedForPickup, http.StatusOK)

	// Pickup protocol is frozen once prepared.
	server.call(t, "PUT", loanPath+"/pickup-protocol", ownerToken,
		map[string]any{"description": "edited later"}, http.StatusUnprocessableEntity, nil)

	l = server.move(t, tenantToken, l.ID, model.LoanStatusActive, http.StatusOK)
	server.call(t, "PUT", loanPath+"/return-protocol", ownerToken,
		map[string]any{"description": "muddy", "refundable_deposit": 40, "confirmed": true}, http.StatusCreated, nil)
	l = server.move(t, ownerToken, l.ID, model.LoanStatusPreparedForReturn, http.StatusOK)
	l = server.move(t, tenantToken, l.ID, model.LoanStatusReturned, http.StatusOK)

	if l.Status != model.LoanStatusReturned {
		t.Fatalf("expected returned, got %q", l.Status)
	}
	if len(l.NextStatuses) != 0 {
		t.Errorf("expected no moves from returned, got %v", l.NextStatuses)
	}
	if l.ReturnProtocol == nil || l.ReturnProtocol.ConfirmedAt == nil {
		t.Error("expected confirmed return protocol on the loan")
	}

	// Both parties may review once.
	server.call(t, "POST", loanPath+"/reviews", tenantToken, map[string]any{"comment": "dry and clean", "rating": 5}, http.StatusCreated, nil)
	server.call(t, "POST", loanPath+"/reviews", tenantToken, map[string]any{"rating": 4}, http.StatusConflict, nil)
	server.call(t, "POST", loanPath+"/reviews", ownerToken, map[string]any{"rating": 9}, http.StatusBadRequest, nil)
	server.call(t, "POST", loanPath+"/reviews", ownerToken, map[string]any{"rating": 4}, http.StatusCreated, nil)

	var reviews []model.Review
	server.call(t, "GET", loanPath+"/reviews", "", nil, http.StatusOK, &reviews)
	if len(reviews) != 2 {
		t.Errorf("expected public item reviews to be visible to guests, got %d", len(reviews))
	}
}

func TestLoanTransitionsRejected(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	strangerToken, _ := server.register(t, "stranger")
	item := server.publicItem(t, ownerToken, "Kayak")
	l := server.inquire(t, tenantToken, item.ID)

	// Tenants can't accept their own inquiry.
	server.move(t, tenantToken, l.ID, model.LoanStatusAccepted, http.StatusUnprocessableEntity)
	// Strangers can't touch the loan at all.
	server.move(t, strangerToken, l.ID, model.LoanStatusCancelled, http.StatusForbidden)
	server.call(t, "GET", fmt.Sprintf("/api/loans/%d", l.ID), strangerToken, nil, http.StatusForbidden, nil)
	// No skipping ahead to active.
	server.move(t, ownerToken, l.ID, model.LoanStatusActive, http.StatusUnprocessableEntity)
	// Prepared for pickup needs a pickup protocol.
	server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusOK)
	server.move(t, ownerToken, l.ID, model.LoanStatusPreparedForPickup, http.StatusUnprocessableEntity)
	// Unknown statuses are a bad request.
	server.move(t, ownerToken, l.ID, "teleported", http.StatusBadRequest)

	// Moving to the current status is a no-op.
	again := server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusOK)
	if again.Version != l.Version+1 {
		t.Errorf("expected idempotent move to keep version %d, got %d", l.Version+1, again.Version)
	}

	// Cancelled is final.
	server.move(t, tenantToken, l.ID, model.LoanStatusCancelled, http.StatusOK)
	server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusUnprocessableEntity)
}

func TestLoanStaleVersion(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	item := server.publicItem(t, ownerToken, "Ladder")
	l := server.inquire(t, tenantToken, item.ID)

	path := fmt.Sprintf("/api/loans/%d/status", l.ID)
	server.call(t, "PUT", path, tenantToken, map[string]any{"status": "cancelled", "version": l.Version + 5}, http.StatusConflict, nil)
	server.call(t, "PUT", path, tenantToken, map[string]any{"status": "cancelled", "version": l.Version}, http.StatusOK, nil)
}

func TestLoanCreateRules(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, tenantID := server.register(t, "tenant")

	var pending model.Item
	server.call(t, "POST", "/api/items", ownerToken, map[string]any{"name": "Pending"}, http.StatusCreated, &pending)
	item := server.publicItem(t, ownerToken, "Bike")
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	// Items that aren't listed publicly look like they don't exist.
	server.call(t, "POST", "/api/loans", tenantToken,
		map[string]any{"item_id": pending.ID, "from": from, "to": from.Add(time.Hour)}, http.StatusNotFound, nil)
	// Owners can't rent their own items.
	server.call(t, "POST", "/api/loans", ownerToken,
		map[string]any{"item_id": item.ID, "from": from, "to": from.Add(time.Hour)}, http.StatusBadRequest, nil)
	server.call(t, "POST", "/api/loans", tenantToken,
		map[string]any{"item_id": item.ID, "from": from, "to": from.Add(-time.Hour)}, http.StatusBadRequest, nil)
	// Guests must log in first.
	server.call(t, "POST", "/api/loans", "",
		map[string]any{"item_id": item.ID, "from": from, "to": from.Add(time.Hour)}, http.StatusUnauthorized, nil)

	// Without the tenant role there's no renting.
	server.call(t, "PUT", fmt.Sprintf("/api/users/%d", tenantID), server.adminToken,
		map[string]any{"roles": []string{"user"}}, http.StatusOK, nil)
	server.call(t, "POST", "/api/loans", tenantToken,
		map[string]any{"item_id": item.ID, "from": from, "to": from.Add(time.Hour)}, http.StatusForbidden, nil)
}

func TestListLoansByParty(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	strangerToken, _ := server.register(t, "stranger")
	item := server.publicItem(t, ownerToken, "Grill")
	server.inquire(t, tenantToken, item.ID)

	tests := []struct {
		token string
		want  int
	}{
		{ownerToken, 1},
		{tenantToken, 1},
		{strangerToken, 0},
		{server.adminToken, 1},
	}
	for _, tt := range tests {
		var loans []loanBody
		server.call(t, "GET", "/api/loans", tt.token, nil, http.StatusOK, &loans)
		if len(loans) != tt.want {
			t.Errorf("expected %d loans, got %d", tt.want, len(loans))
		}
	}
}

func TestProtocolAccess(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	strangerToken, _ := server.register(t, "stranger")
	item := server.publicItem(t, ownerToken, "Drone")
	l := server.inquire(t, tenantToken, item.ID)
	path := fmt.Sprintf("/api/loans/%d/pickup-protocol", l.ID)

	// Before acceptance the protocol is locked.
	server.call(t, "PUT", path, ownerToken, map[string]any{"description": "early"}, http.StatusUnprocessableEntity, nil)
	server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusOK)

	server.call(t, "GET", path, tenantToken, nil, http.StatusNotFound, nil)
	// Only the owner writes protocols.
	server.call(t, "PUT", path, tenantToken, map[string]any{"description": "mine"}, http.StatusForbidden, nil)
	server.call(t, "PUT", path, ownerToken, map[string]any{"description": "v1", "refundable_deposit": 100}, http.StatusCreated, nil)
	server.call(t, "PUT", path, ownerToken, map[string]any{"description": "v2", "refundable_deposit": 120}, http.StatusOK, nil)
	server.call(t, "PUT", path, ownerToken, map[string]any{"refundable_deposit": -1}, http.StatusBadRequest, nil)

	var p model.PickupProtocol
	server.call(t, "GET", path, tenantToken, nil, http.StatusOK, &p)
	if p.Description != "v2" || p.AcceptedRefundableDeposit != 120 {
		t.Errorf("expected updated protocol, got %+v", p)
	}
	server.call(t, "GET", path, strangerToken, nil, http.StatusForbidden, nil)

	// The tenant rejects the pickup, the owner may fix the protocol again.
	server.move(t, ownerToken, l.ID, model.LoanStatusPreparedForPickup, http.StatusOK)
	server.move(t, tenantToken, l.ID, model.LoanStatusPickupDenied, http.StatusOK)
	server.call(t, "PUT", path, ownerToken, map[string]any{"description": "v3"}, http.StatusOK, nil)

	// Protocols have no delete route, not even for an administrator.
	server.call(t, "DELETE", path, server.adminToken, nil, http.StatusMethodNotAllowed, nil)
	server.call(t, "GET", path, tenantToken, nil, http.StatusOK, nil)
}

func TestProtocolWriteRefusedForTenantInAnyStatus(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	item := server.publicItem(t, ownerToken, "Kayak")
	l := server.inquire(t, tenantToken, item.ID)
	pickup := fmt.Sprintf("/api/loans/%d/pickup-protocol", l.ID)
	ret := fmt.Sprintf("/api/loans/%d/return-protocol", l.ID)
	body := map[string]any{"description": "tenant notes"}

	// Inquired: both protocols locked for the owner, still forbidden for the tenant.
	server.call(t, "PUT", pickup, ownerToken, body, http.StatusUnprocessableEntity, nil)
	server.call(t, "PUT", pickup, tenantToken, body, http.StatusForbidden, nil)
	server.call(t, "PUT", ret, tenantToken, body, http.StatusForbidden, nil)

	// Accepted: pickup editable, the tenant is refused the same way.
	server.move(t, ownerToken, l.ID, model.LoanStatusAccepted, http.StatusOK)
	server.call(t, "PUT", pickup, tenantToken, body, http.StatusForbidden, nil)
	server.call(t, "PUT", ret, tenantToken, body, http.StatusForbidden, nil)
}

func TestAdminActsForParty(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := server.register(t, "owner")
	tenantToken, _ := server.register(t, "tenant")
	item := server.publicItem(t, ownerToken, "Trailer")
	l := server.inquire(t, tenantToken, item.ID)
	path := fmt.Sprintf("/api/loans/%d/status", l.ID)

	accept := map[string]any{"status": model.LoanStatusAccepted}
	server.call(t, "PUT", path, server.adminToken, accept, http.StatusBadRequest, nil)

	// The admin is bound by the same table as the party they act for.
	accept["actor"] = "tenant"
	server.call(t, "PUT", path, server.adminToken, accept, http.StatusUnprocessableEntity, nil)

	accept["actor"] = "owner"
	var got loanBody
	server.call(t, "PUT", path, server.adminToken, accept, http.StatusOK, &got)
	if got.Status != model.LoanStatusAccepted {
		t.Errorf("expected accepted, got %s", got.Status)
	}
	if len(got.NextStatuses) != 0 {
		t.Errorf("expected no next statuses for a non-party, got %v", got.NextStatuses)
	}

	// A party's actor field is ignored; the tenant still acts as the tenant.
	server.call(t, "PUT", path, tenantToken,
		map[string]any{"status": model.LoanStatusActive, "actor": "owner"}, http.StatusUnprocessableEntity, nil)
}
