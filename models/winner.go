package models

import (
	"time"

	"github.com/google/uuid"
)

// ClaimStatus represents the lifecycle state of a winner's claim
type ClaimStatus string

const (
	ClaimStatusPending ClaimStatus = "pending"
	ClaimStatusClaimed ClaimStatus = "claimed"
	ClaimStatusExpired ClaimStatus = "expired"
)

// Winner represents an awarded prize waiting to be claimed
type Winner struct {
	ID            int64       `db:"id"`
	PublicID      uuid.UUID   `db:"public_id"`
	PrizeID       int64       `db:"prize_id"`
	ParticipantID int64       `db:"participant_id"`
	Email         string      `db:"email"`
	Name          string      `db:"name"`
	ClaimCode     string      `db:"claim_code"`
	Status        ClaimStatus `db:"status"`
	ExpiresAt     time.Time   `db:"expires_at"`
	ClaimedAt     *time.Time  `db:"claimed_at"`
	CreatedAt     time.Time   `db:"created_at"`
}

// IsExpired checks whether the claim window has passed at the given time
func (w *Winner) IsExpired(now time.Time) bool {
	return !now.Before(w.ExpiresAt)
}

// DrawResult represents the outcome of a successful draw (returned to the caller)
type DrawResult struct {
	WinnerID            uuid.UUID
	PrizeID             int64
	PrizeName           string
	PrizeDescription    string
	PrizeValue          int64
	ClaimCode           string
	ExpiresAt           time.Time
	WheelSpinDurationMs int64
}
