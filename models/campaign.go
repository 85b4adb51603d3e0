package models

import "time"

// Campaign represents a review-lottery campaign run by a store
type Campaign struct {
	ID        int64     `db:"id"`
	StoreID   int64     `db:"store_id"`
	Name      string    `db:"name"`
	IsActive  bool      `db:"is_active"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsRunning checks whether the campaign accepts draws at the given time.
// The window is half-open: startsAt <= now < endsAt.
func (c *Campaign) IsRunning(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return !now.Before(c.StartsAt) && now.Before(c.EndsAt)
}

// Store represents the business that owns campaigns
type Store struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	DrawsEnabled bool      `db:"draws_enabled"`
	CreatedAt    time.Time `db:"created_at"`
}
