package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// ErrAlreadyReviewed is returned when the author already reviewed the loan.
var ErrAlreadyReviewed = errors.New("loan already reviewed by this user")

// CreateReview stores a review. Each party may review a loan once.
func CreateReview(ctx context.Context, db *sql.DB, loanID, authorID int64, comment string, rating int) (*model.Review, error) {
	if err := model.ValidateRating(rating); err != nil {
		return nil, err
	}

	var exists int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE loan_id = ? AND author_id = ?`, loanID, authorID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking review: %w", err)
	}
	if exists > 0 {
		return nil, ErrAlreadyReviewed
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO reviews (loan_id, author_id, comment, rating) VALUES (?, ?, ?, ?)`,
		loanID, authorID, comment, rating,
	)
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting review id: %w", err)
	}

	return GetReview(ctx, db, id)
}

// GetReview returns a review with its loan and the loan's item loaded.
func GetReview(ctx context.Context, db *sql.DB, id int64) (*model.Review, error) {
	r := &model.Review{}
	err := db.QueryRowContext(ctx,
		`SELECT id, loan_id, author_id, comment, rating, created_at, updated_at
		 FROM reviews WHERE id = ?`, id,
	).Scan(&r.ID, &r.LoanID, &r.AuthorID, &r.Comment, &r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting review: %w", err)
	}

	if r.Loan, err = getLoanWithItem(ctx, db, r.LoanID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviews returns the reviews of a loan.
func ListReviews(ctx context.Context, db *sql.DB, loanID int64) ([]model.Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, loan_id, author_id, comment, rating, created_at, updated_at
		 FROM reviews WHERE loan_id = ? ORDER BY id`, loanID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.LoanID, &r.AuthorID, &r.Comment, &r.Rating, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// UpdateReview updates a review's comment and rating.
func UpdateReview(ctx context.Context, db *sql.DB, id int64, comment string, rating int) error {
	if err := model.ValidateRating(rating); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE reviews SET comment = ?, rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		comment, rating, id,
	)
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}
	return nil
}

// DeleteReview removes a review.
func DeleteReview(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return nil
}
