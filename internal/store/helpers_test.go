package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

func seedUser(t *testing.T, db *sql.DB, username string, roles ...model.Role) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, username, "hash", roles)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func seedItem(t *testing.T, db *sql.DB, ownerID int64, name string, status model.ItemStatus) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, &model.Item{
		OwnerID: ownerID, Name: name, PricePerDay: 5, Status: status,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", name, err)
	}
	return item
}

func seedLoan(t *testing.T, db *sql.DB, itemID, tenantID int64) *model.Loan {
	t.Helper()
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l, err := CreateLoan(context.Background(), db, itemID, tenantID, from, from.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	return l
}
