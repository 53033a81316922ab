package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessLog records the outcome of one end-to-end pipeline run.
type ProcessLog struct {
	ID            int64     `db:"id" json:"id"`
	CorrelationID uuid.UUID `db:"correlation_id" json:"correlation_id"`
	Subject       string    `db:"subject" json:"subject"`
	ClientID      int64     `db:"client_id" json:"client_id"`
	ProcessType   int       `db:"process_type" json:"process_type"`
	Status        string    `db:"status" json:"status"`
	Message       string    `db:"message" json:"message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
