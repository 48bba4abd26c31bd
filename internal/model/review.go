package model

import (
	"fmt"
	"time"
)

// Rating bounds.
const (
	MinRating = 0
	MaxRating = 5
)

// Review is a rating one loan party leaves after the loan.
type Review struct {
	ID        int64     `json:"id"`
	LoanID    int64     `json:"loan_id"`
	AuthorID  int64     `json:"author_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Loan *Loan `json:"-"`
}

// ValidateRating checks that a rating is within bounds.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}
