package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// protocolTable names the table and deposit column of a protocol kind.
type protocolTable struct {
	name    string
	deposit string
}

var (
	pickupTable = protocolTable{name: "pickup_protocols", deposit: "accepted_refundable_deposit"}
	returnTable = protocolTable{name: "return_protocols", deposit: "returned_refundable_deposit"}
)

// protocolRow is the shape shared by both protocol tables. Protocols are
// never deleted; they live as long as their loan.
type protocolRow struct {
	ID          int64
	LoanID      int64
	Description string
	Deposit     float64
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *protocolRow) pickup() *model.PickupProtocol {
	return &model.PickupProtocol{
		ID: r.ID, LoanID: r.LoanID, Description: r.Description,
		AcceptedRefundableDeposit: r.Deposit, ConfirmedAt: r.ConfirmedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *protocolRow) ret() *model.ReturnProtocol {
	return &model.ReturnProtocol{
		ID: r.ID, LoanID: r.LoanID, Description: r.Description,
		ReturnedRefundableDeposit: r.Deposit, ConfirmedAt: r.ConfirmedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func getProtocol(ctx context.Context, q querier, t protocolTable, where string, arg any) (*protocolRow, error) {
	r := &protocolRow{}
	err := q.QueryRowContext(ctx,
		`SELECT id, loan_id, description, `+t.deposit+`, confirmed_at, created_at, updated_at
		 FROM `+t.name+` WHERE `+where, arg,
	).Scan(&r.ID, &r.LoanID, &r.Description, &r.Deposit, &r.ConfirmedAt, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", t.name, err)
	}
	return r, nil
}

// bumpLoanVersion claims the loan row for a write made on its behalf.
func bumpLoanVersion(ctx context.Context, q querier, loanID, expectedVersion int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE loans SET version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND version = ?`,
		loanID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("bumping loan version: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking loan version: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating loan %d: %w", loanID, ErrVersionConflict)
	}
	return nil
}

func createProtocol(ctx context.Context, db *sql.DB, t protocolTable, r *protocolRow, loanVersion int64) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpLoanVersion(ctx, tx, r.LoanID, loanVersion); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO `+t.name+` (loan_id, description, `+t.deposit+`, confirmed_at) VALUES (?, ?, ?, ?)`,
		r.LoanID, r.Description, r.Deposit, r.ConfirmedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", t.name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting %s id: %w", t.name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", t.name, err)
	}
	return id, nil
}

func updateProtocol(ctx context.Context, db *sql.DB, t protocolTable, r *protocolRow, loanVersion int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpLoanVersion(ctx, tx, r.LoanID, loanVersion); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE `+t.name+` SET description = ?, `+t.deposit+` = ?, confirmed_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		r.Description, r.Deposit, r.ConfirmedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating %s: %w", t.name, err)
	}
	return tx.Commit()
}

// CreatePickupProtocol stores a new pickup protocol for p.LoanID. The loan
// must still be at loanVersion, otherwise ErrVersionConflict is returned.
func CreatePickupProtocol(ctx context.Context, db *sql.DB, p *model.PickupProtocol, loanVersion int64) (*model.PickupProtocol, error) {
	id, err := createProtocol(ctx, db, pickupTable, &protocolRow{
		LoanID: p.LoanID, Description: p.Description,
		Deposit: p.AcceptedRefundableDeposit, ConfirmedAt: p.ConfirmedAt,
	}, loanVersion)
	if err != nil {
		return nil, err
	}
	return GetPickupProtocol(ctx, db, id)
}

// GetPickupProtocol returns a pickup protocol with its loan, the loan's item
// and its images loaded.
func GetPickupProtocol(ctx context.Context, db *sql.DB, id int64) (*model.PickupProtocol, error) {
	r, err := getProtocol(ctx, db, pickupTable, `id = ?`, id)
	if err != nil || r == nil {
		return nil, err
	}

	p := r.pickup()
	if p.Loan, err = getLoanWithItem(ctx, db, p.LoanID); err != nil {
		return nil, err
	}
	if p.Loan != nil {
		p.Loan.PickupProtocol = p
	}
	if p.Images, err = ListImages(ctx, db, ImageParent{PickupProtocolID: p.ID}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePickupProtocol updates the editable fields of a pickup protocol,
// guarded by the loan version like CreatePickupProtocol.
func UpdatePickupProtocol(ctx context.Context, db *sql.DB, p *model.PickupProtocol, loanVersion int64) error {
	return updateProtocol(ctx, db, pickupTable, &protocolRow{
		ID: p.ID, LoanID: p.LoanID, Description: p.Description,
		Deposit: p.AcceptedRefundableDeposit, ConfirmedAt: p.ConfirmedAt,
	}, loanVersion)
}

// CreateReturnProtocol stores a new return protocol for p.LoanID, guarded by
// the loan version.
func CreateReturnProtocol(ctx context.Context, db *sql.DB, p *model.ReturnProtocol, loanVersion int64) (*model.ReturnProtocol, error) {
	id, err := createProtocol(ctx, db, returnTable, &protocolRow{
		LoanID: p.LoanID, Description: p.Description,
		Deposit: p.ReturnedRefundableDeposit, ConfirmedAt: p.ConfirmedAt,
	}, loanVersion)
	if err != nil {
		return nil, err
	}
	return GetReturnProtocol(ctx, db, id)
}

// GetReturnProtocol returns a return protocol with its loan, the loan's item
// and its images loaded.
func GetReturnProtocol(ctx context.Context, db *sql.DB, id int64) (*model.ReturnProtocol, error) {
	r, err := getProtocol(ctx, db, returnTable, `id = ?`, id)
	if err != nil || r == nil {
		return nil, err
	}

	p := r.ret()
	if p.Loan, err = getLoanWithItem(ctx, db, p.LoanID); err != nil {
		return nil, err
	}
	if p.Loan != nil {
		p.Loan.ReturnProtocol = p
	}
	if p.Images, err = ListImages(ctx, db, ImageParent{ReturnProtocolID: p.ID}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateReturnProtocol updates the editable fields of a return protocol,
// guarded by the loan version.
func UpdateReturnProtocol(ctx context.Context, db *sql.DB, p *model.ReturnProtocol, loanVersion int64) error {
	return updateProtocol(ctx, db, returnTable, &protocolRow{
		ID: p.ID, LoanID: p.LoanID, Description: p.Description,
		Deposit: p.ReturnedRefundableDeposit, ConfirmedAt: p.ConfirmedAt,
	}, loanVersion)
}
