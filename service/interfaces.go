package service

import (
	"context"
	"time"

	"luckywheel/events"
	"luckywheel/models"
)

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	// GetByID retrieves a campaign by its ID, or nil if absent
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
}

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	// IsDrawAllowed reports whether the store may currently run draws
	IsDrawAllowed(ctx context.Context, storeID int64) (bool, error)
}

// PrizeRepository defines the interface for prize data access
type PrizeRepository interface {
	// GetByCampaign returns all prizes of a campaign in creation order
	GetByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error)

	// GetAvailableByCampaign returns the campaign's prizes with stock remaining
	GetAvailableByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error)

	// DecrementStock atomically takes one unit of stock and returns the updated
	// prize. Returns models.ErrPrizeExhausted if no stock was left.
	DecrementStock(ctx context.Context, prizeID int64) (*models.Prize, error)

	// IncrementStock atomically restores one unit of stock (the compensating
	// rollback). Returns models.ErrStockFull if the prize is already at full
	// stock or has no winners to roll back.
	IncrementStock(ctx context.Context, prizeID int64) error
}

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// HasParticipated reports whether the email has already played the campaign
	HasParticipated(ctx context.Context, campaignID int64, email string) (bool, error)

	// RegisterAttempt creates the participant record for (campaign, email) or
	// bumps its play count if it already exists
	RegisterAttempt(ctx context.Context, campaignID int64, email, name string, metadata map[string]any) (*models.Participant, error)

	// MarkPlayed atomically claims the participant's single play. Returns
	// models.ErrAlreadyPlayed if the play was already used.
	MarkPlayed(ctx context.Context, participantID int64, when time.Time) error

	// UnmarkPlayed releases a previously claimed play so the participant can
	// retry after a failed draw
	UnmarkPlayed(ctx context.Context, participantID int64) error
}

// WinnerRepository defines the interface for winner data access
type WinnerRepository interface {
	// Create persists a new winner record with its claim code
	Create(ctx context.Context, winner *models.Winner) error

	// GetByClaimCode retrieves a winner by claim code, or nil if absent
	GetByClaimCode(ctx context.Context, claimCode string) (*models.Winner, error)

	// Redeem atomically flips a pending, unexpired claim to claimed and returns
	// the updated winner, or nil if no such claim matched
	Redeem(ctx context.Context, claimCode string, when time.Time) (*models.Winner, error)

	// ExpireOverdue marks all overdue pending claims as expired and returns the
	// number of claims affected
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	// CountByPrize returns the number of winner records for a prize
	CountByPrize(ctx context.Context, prizeID int64) (int, error)
}

// DrawRequest carries one draw attempt from the caller
type DrawRequest struct {
	Email      string
	Name       string
	CampaignID int64

	// Metadata is opaque request context (IP, user agent) stored with the
	// participant record for auditing
	Metadata map[string]any
}

// DrawService defines the interface for running draws
type DrawService interface {
	// Draw runs the full allocation protocol for one participant
	Draw(ctx context.Context, req DrawRequest) (*models.DrawResult, error)
}

// ClaimService defines the interface for claim redemption
type ClaimService interface {
	// Redeem redeems a pending claim code
	Redeem(ctx context.Context, claimCode string) (*models.Winner, error)

	// ExpireOverdue expires all overdue pending claims
	ExpireOverdue(ctx context.Context) (int64, error)
}

// CampaignService defines the read side used by the wheel UI
type CampaignService interface {
	// GetCampaign returns a campaign and its prize pool
	GetCampaign(ctx context.Context, id int64) (*models.Campaign, []*models.Prize, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction (no-op if already committed)
	Rollback() error

	// CampaignRepository returns the campaign repository for this unit of work
	CampaignRepository() CampaignRepository

	// StoreRepository returns the store repository for this unit of work
	StoreRepository() StoreRepository

	// PrizeRepository returns the prize repository for this unit of work
	PrizeRepository() PrizeRepository

	// ParticipantRepository returns the participant repository for this unit of work
	ParticipantRepository() ParticipantRepository

	// WinnerRepository returns the winner repository for this unit of work
	WinnerRepository() WinnerRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
