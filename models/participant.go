package models

import (
	"errors"
	"time"
)

// ErrAlreadyPlayed is returned when marking a participant as played who has
// already used their draw
var ErrAlreadyPlayed = errors.New("participant has already played")

// Participant represents one person's entry into a campaign, keyed by
// (campaign, email). A participant may record multiple attempts but plays
// at most once.
type Participant struct {
	ID         int64          `db:"id"`
	CampaignID int64          `db:"campaign_id"`
	Email      string         `db:"email"`
	Name       string         `db:"name"`
	HasPlayed  bool           `db:"has_played"`
	PlayCount  int            `db:"play_count"`
	PlayedAt   *time.Time     `db:"played_at"`
	Metadata   map[string]any `db:"metadata"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
