package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID              uuid.UUID  `json:"id"`
	Fid             int64      `json:"fid"`
	TransactionHash string     `json:"transaction_hash"`
	FromAddress     string     `json:"from_address"`
	Amount          int64      `json:"amount"`
	Token           string     `json:"token"`
	Network         string     `json:"network"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
