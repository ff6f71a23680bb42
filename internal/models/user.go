package models

import (
	"time"
)

type Plan string

const (
	PlanFree      Plan = "free"
	PlanUnlimited Plan = "unlimited"
)

type User struct {
	Fid            int64      `json:"fid"`
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	PfpURL         string     `json:"pfp_url"`
	CustodyAddress *string    `json:"custody_address,omitempty"`
	SignerUUID     *string    `json:"signer_uuid,omitempty"`
	Plan           Plan       `json:"plan"`
	CastsUsed      int        `json:"casts_used"`
	MaxFreeCasts   int        `json:"max_free_casts"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// HasFreeCastsLeft reports whether a free-plan user may schedule another cast.
// Unlimited-plan users always may.
func (u *User) HasFreeCastsLeft() bool {
	if u.Plan != PlanFree {
		return true
	}
	return u.CastsUsed < u.MaxFreeCasts
}
