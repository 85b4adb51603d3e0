package repository

import (
	"context"
	"fmt"

	"luckywheel/database"
	"luckywheel/models"

	"github.com/jackc/pgx/v5"
)

// CampaignRepository implements the service.CampaignRepository interface
type CampaignRepository struct {
	q queryable
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *database.DB) *CampaignRepository {
	return &CampaignRepository{q: db.Pool}
}

// newCampaignRepositoryWithTx creates a new campaign repository with a transaction
func newCampaignRepositoryWithTx(tx queryable) *CampaignRepository {
	return &CampaignRepository{q: tx}
}

// GetByID retrieves a campaign by its ID
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `
		SELECT id, store_id, name, is_active, starts_at, ends_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	var campaign models.Campaign
	err := r.q.QueryRow(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.StoreID,
		&campaign.Name,
		&campaign.IsActive,
		&campaign.StartsAt,
		&campaign.EndsAt,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}

	return &campaign, nil
}

// StoreRepository implements the service.StoreRepository interface
type StoreRepository struct {
	q queryable
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *database.DB) *StoreRepository {
	return &StoreRepository{q: db.Pool}
}

// newStoreRepositoryWithTx creates a new store repository with a transaction
func newStoreRepositoryWithTx(tx queryable) *StoreRepository {
	return &StoreRepository{q: tx}
}

// IsDrawAllowed reports whether the store may currently run draws
func (r *StoreRepository) IsDrawAllowed(ctx context.Context, storeID int64) (bool, error) {
	query := `
		SELECT draws_enabled
		FROM stores
		WHERE id = $1
	`

	var enabled bool
	err := r.q.QueryRow(ctx, query, storeID).Scan(&enabled)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check draw gate for store %d: %w", storeID, err)
	}

	return enabled, nil
}
