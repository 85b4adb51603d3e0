package models

import (
	"errors"
	"time"
)

var (
	// ErrPrizeExhausted is returned when decrementing a prize with no stock left
	ErrPrizeExhausted = errors.New("prize is no longer available")

	// ErrStockFull is returned when incrementing a prize already at full stock
	ErrStockFull = errors.New("prize stock is already at original quantity")
)

// Prize represents one prize in a campaign's pool
type Prize struct {
	ID           int64     `db:"id"`
	CampaignID   int64     `db:"campaign_id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	Value        int64     `db:"value"`
	Probability  float64   `db:"probability"`
	Quantity     int       `db:"quantity"`
	Remaining    int       `db:"remaining"`
	WinnersCount int       `db:"winners_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsAvailable checks if the prize still has stock to award
func (p *Prize) IsAvailable() bool {
	return p.Remaining > 0
}

// DecrementStock returns a copy of the prize with one unit taken.
// The authoritative decrement is the conditional UPDATE in the repository;
// this keeps in-memory snapshots consistent with what was persisted.
func (p *Prize) DecrementStock() (*Prize, error) {
	if p.Remaining <= 0 {
		return nil, ErrPrizeExhausted
	}
	next := *p
	next.Remaining--
	next.WinnersCount++
	return &next, nil
}

// IncrementStock returns a copy of the prize with one unit restored.
// Guards against double-rollback: refuses once stock is back at quantity.
func (p *Prize) IncrementStock() (*Prize, error) {
	if p.WinnersCount <= 0 || p.Remaining >= p.Quantity {
		return nil, ErrStockFull
	}
	next := *p
	next.Remaining++
	next.WinnersCount--
	return &next, nil
}
