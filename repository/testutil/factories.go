package testutil

import (
	"context"
	"testing"
	"time"

	"luckywheel/database"
	"luckywheel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Campaigns, prizes and stores are created by collaborators outside the draw
// engine, so the repositories expose no write path for them; tests seed them
// with direct inserts instead.

// SeedStore inserts a store and returns it
func SeedStore(t *testing.T, db *database.DB, drawsEnabled bool) *models.Store {
	store := &models.Store{
		Name:         "Test Store",
		DrawsEnabled: drawsEnabled,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO stores (name, draws_enabled)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, store.Name, store.DrawsEnabled).Scan(&store.ID, &store.CreatedAt)
	require.NoError(t, err)
	return store
}

// SeedCampaign inserts a running campaign owned by the store and returns it
func SeedCampaign(t *testing.T, db *database.DB, storeID int64) *models.Campaign {
	now := time.Now()
	return SeedCampaignWithWindow(t, db, storeID, true, now.Add(-24*time.Hour), now.Add(24*time.Hour))
}

// SeedCampaignWithWindow inserts a campaign with an explicit window and returns it
func SeedCampaignWithWindow(t *testing.T, db *database.DB, storeID int64, isActive bool, startsAt, endsAt time.Time) *models.Campaign {
	campaign := &models.Campaign{
		StoreID:  storeID,
		Name:     "Test Campaign",
		IsActive: isActive,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO campaigns (store_id, name, is_active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, campaign.StoreID, campaign.Name, campaign.IsActive, campaign.StartsAt, campaign.EndsAt).
		Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
	require.NoError(t, err)
	return campaign
}

// SeedPrize inserts a prize with full stock and returns it
func SeedPrize(t *testing.T, db *database.DB, campaignID int64, probability float64, quantity int) *models.Prize {
	prize := &models.Prize{
		CampaignID:  campaignID,
		Name:        "Test Prize",
		Probability: probability,
		Quantity:    quantity,
		Remaining:   quantity,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO prizes (campaign_id, name, description, value, probability, quantity, remaining, winners_count)
		VALUES ($1, $2, $3, $4, $5, $6, $6, 0)
		RETURNING id, created_at, updated_at
	`, prize.CampaignID, prize.Name, prize.Description, prize.Value, prize.Probability, prize.Quantity).
		Scan(&prize.ID, &prize.CreatedAt, &prize.UpdatedAt)
	require.NoError(t, err)
	return prize
}

// CreateTestWinner builds an unpersisted winner record for a prize and participant
func CreateTestWinner(prizeID, participantID int64, claimCode string) *models.Winner {
	return &models.Winner{
		PublicID:      uuid.New(),
		PrizeID:       prizeID,
		ParticipantID: participantID,
		Email:         "winner@example.com",
		Name:          "Test Winner",
		ClaimCode:     claimCode,
		Status:        models.ClaimStatusPending,
		ExpiresAt:     time.Now().Add(30 * 24 * time.Hour),
	}
}
