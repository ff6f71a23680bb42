package models

import (
	"time"

	"github.com/google/uuid"
)

type CastStatus string

const (
	CastStatusPending   CastStatus = "pending"
	CastStatusSent      CastStatus = "sent"
	CastStatusFailed    CastStatus = "failed"
	CastStatusCancelled CastStatus = "cancelled"
)

// MaxCastLength is the protocol limit on cast content.
const MaxCastLength = 320

type ScheduledCast struct {
	ID            uuid.UUID  `json:"id"`
	Fid           int64      `json:"fid"`
	Content       string     `json:"content"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        CastStatus `json:"status"`
	CastHash      *string    `json:"cast_hash,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// PendingCast is a due cast joined with the owner's signer and plan,
// as selected by the dispatch query.
type PendingCast struct {
	ID            uuid.UUID
	Fid           int64
	Content       string
	ScheduledTime time.Time
	SignerUUID    string
	Plan          Plan
}
