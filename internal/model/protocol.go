package model

import "time"

// PickupProtocol documents item condition and the deposit taken at handover.
type PickupProtocol struct {
	ID                        int64      `json:"id"`
	LoanID                    int64      `json:"loan_id"`
	Description               string     `json:"description"`
	AcceptedRefundableDeposit float64    `json:"accepted_refundable_deposit"`
	ConfirmedAt               *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	Loan   *Loan   `json:"-"`
	Images []Image `json:"images,omitempty"`
}

// ReturnProtocol documents item condition and the deposit refunded at return.
type ReturnProtocol struct {
	ID                        int64      `json:"id"`
	LoanID                    int64      `json:"loan_id"`
	Description               string     `json:"description"`
	ReturnedRefundableDeposit float64    `json:"returned_refundable_deposit"`
	ConfirmedAt               *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	Loan   *Loan   `json:"-"`
	Images []Image `json:"images,omitempty"`
}
