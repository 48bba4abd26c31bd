package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

const loanColumns = `l.id, l.item_id, l.tenant_id, l.status, l.from_date, l.to_date, l.version, l.created_at, l.updated_at`

// CreateLoan creates a loan inquiry for an item.
func CreateLoan(ctx context.Context, db *sql.DB, itemID, tenantID int64, from, to time.Time) (*model.Loan, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("loan ends before it starts")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO loans (item_id, tenant_id, status, from_date, to_date) VALUES (?, ?, ?, ?, ?)`,
		itemID, tenantID, model.LoanStatusInquired, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("creating loan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting loan id: %w", err)
	}

	return GetLoan(ctx, db, id)
}

// GetLoan returns a loan with its item, protocols and reviews loaded.
func GetLoan(ctx context.Context, db *sql.DB, id int64) (*model.Loan, error) {
	l, err := getLoanWithItem(ctx, db, id)
	if err != nil || l == nil {
		return l, err
	}

	pickup, err := getProtocol(ctx, db, pickupTable, `loan_id = ?`, l.ID)
	if err != nil {
		return nil, err
	}
	if pickup != nil {
		p := pickup.pickup()
		if p.Images, err = ListImages(ctx, db, ImageParent{PickupProtocolID: p.ID}); err != nil {
			return nil, err
		}
		p.Loan = l
		l.PickupProtocol = p
	}

	ret, err := getProtocol(ctx, db, returnTable, `loan_id = ?`, l.ID)
	if err != nil {
		return nil, err
	}
	if ret != nil {
		p := ret.ret()
		if p.Images, err = ListImages(ctx, db, ImageParent{ReturnProtocolID: p.ID}); err != nil {
			return nil, err
		}
		p.Loan = l
		l.ReturnProtocol = p
	}

	if l.Reviews, err = ListReviews(ctx, db, l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

// getLoanWithItem loads a loan and its item but no protocols or reviews.
func getLoanWithItem(ctx context.Context, db *sql.DB, id int64) (*model.Loan, error) {
	l := &model.Loan{}
	err := db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans l WHERE l.id = ?`, id,
	).Scan(&l.ID, &l.ItemID, &l.TenantID, &l.Status, &l.From, &l.To, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}

	if l.Item, err = getItem(ctx, db, l.ItemID); err != nil {
		return nil, err
	}
	return l, nil
}

// ListLoans returns the loans where userID is the tenant or the item owner,
// newest first. A zero userID lists every loan.
func ListLoans(ctx context.Context, db *sql.DB, userID int64) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + `,
	          i.id, i.owner_id, i.category_id, i.name, i.description, i.price_per_day, i.status,
	          i.created_at, i.updated_at, i.deleted_at
	          FROM loans l JOIN items i ON i.id = l.item_id`
	var args []any
	if userID != 0 {
		query += ` WHERE l.tenant_id = ? OR i.owner_id = ?`
		args = append(args, userID, userID)
	}
	query += ` ORDER BY l.created_at DESC, l.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		item := &model.Item{}
		var description sql.NullString
		var categoryID sql.NullInt64
		if err := rows.Scan(&l.ID, &l.ItemID, &l.TenantID, &l.Status, &l.From, &l.To, &l.Version,
			&l.CreatedAt, &l.UpdatedAt,
			&item.ID, &item.OwnerID, &categoryID, &item.Name, &description, &item.PricePerDay,
			&item.Status, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		item.Description = description.String
		if categoryID.Valid {
			item.CategoryID = &categoryID.Int64
		}
		l.Item = item
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// UpdateLoanStatus persists a status produced by the loan state machine.
// The write only succeeds if the stored version still equals
// expectedVersion; otherwise ErrVersionConflict is returned.
func UpdateLoanStatus(ctx context.Context, db *sql.DB, id, expectedVersion int64, status model.LoanStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE loans SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		status, id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating loan status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking loan update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating loan %d: %w", id, ErrVersionConflict)
	}
	return nil
}
