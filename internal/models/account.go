package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a ledger row. Ledger rows are written only by the atomic
// commit call; validation stages read them for reconciliation.
type Account struct {
	ID            int64     `db:"id" json:"id"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	ClientID      int64     `db:"client_id" json:"client_id"`
	Balance       float64   `db:"balance" json:"balance"`
	CorrelationID uuid.UUID `db:"correlation_id" json:"correlation_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type AccountTransaction struct {
	ID                int64     `db:"id" json:"id"`
	AccountID         int64     `db:"account_id" json:"account_id"`
	TransactionAmount float64   `db:"transaction_amount" json:"transaction_amount"`
	FeeAmount         float64   `db:"fee_amount" json:"fee_amount"`
	CorrelationID     uuid.UUID `db:"correlation_id" json:"correlation_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
