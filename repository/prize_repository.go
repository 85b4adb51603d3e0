package repository

import (
	"context"
	"fmt"

	"luckywheel/database"
	"luckywheel/models"

	"github.com/jackc/pgx/v5"
)

// PrizeRepository implements the service.PrizeRepository interface
type PrizeRepository struct {
	q queryable
}

// NewPrizeRepository creates a new prize repository
func NewPrizeRepository(db *database.DB) *PrizeRepository {
	return &PrizeRepository{q: db.Pool}
}

// newPrizeRepositoryWithTx creates a new prize repository with a transaction
func newPrizeRepositoryWithTx(tx queryable) *PrizeRepository {
	return &PrizeRepository{q: tx}
}

const prizeColumns = `id, campaign_id, name, description, value, probability, quantity, remaining, winners_count, created_at, updated_at`

func scanPrize(row pgx.Row) (*models.Prize, error) {
	var prize models.Prize
	err := row.Scan(
		&prize.ID,
		&prize.CampaignID,
		&prize.Name,
		&prize.Description,
		&prize.Value,
		&prize.Probability,
		&prize.Quantity,
		&prize.Remaining,
		&prize.WinnersCount,
		&prize.CreatedAt,
		&prize.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prize, nil
}

// GetByCampaign returns all prizes of a campaign in creation order
func (r *PrizeRepository) GetByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM prizes
		WHERE campaign_id = $1
		ORDER BY id ASC
	`, prizeColumns)

	return r.queryPrizes(ctx, query, campaignID)
}

// GetAvailableByCampaign returns the campaign's prizes with stock remaining
func (r *PrizeRepository) GetAvailableByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM prizes
		WHERE campaign_id = $1 AND remaining > 0
		ORDER BY id ASC
	`, prizeColumns)

	return r.queryPrizes(ctx, query, campaignID)
}

func (r *PrizeRepository) queryPrizes(ctx context.Context, query string, campaignID int64) ([]*models.Prize, error) {
	rows, err := r.q.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prizes for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	var prizes []*models.Prize
	for rows.Next() {
		prize, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, prize)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prizes: %w", err)
	}

	return prizes, nil
}

// DecrementStock atomically takes one unit of stock. The WHERE clause is the
// whole concurrency story: the decrement only applies while stock remains, so
// concurrent draws can never drive remaining below zero.
func (r *PrizeRepository) DecrementStock(ctx context.Context, prizeID int64) (*models.Prize, error) {
	query := fmt.Sprintf(`
		UPDATE prizes
		SET remaining = remaining - 1, winners_count = winners_count + 1, updated_at = NOW()
		WHERE id = $1 AND remaining > 0
		RETURNING %s
	`, prizeColumns)

	prize, err := scanPrize(r.q.QueryRow(ctx, query, prizeID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("prize %d: %w", prizeID, models.ErrPrizeExhausted)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock for prize %d: %w", prizeID, err)
	}

	return prize, nil
}

// IncrementStock atomically restores one unit of stock, the compensating
// rollback for a failed draw. Refuses to go past the original quantity so a
// double rollback cannot mint stock.
func (r *PrizeRepository) IncrementStock(ctx context.Context, prizeID int64) error {
	query := `
		UPDATE prizes
		SET remaining = remaining + 1, winners_count = winners_count - 1, updated_at = NOW()
		WHERE id = $1 AND winners_count > 0 AND remaining < quantity
	`

	result, err := r.q.Exec(ctx, query, prizeID)
	if err != nil {
		return fmt.Errorf("failed to increment stock for prize %d: %w", prizeID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("prize %d: %w", prizeID, models.ErrStockFull)
	}

	return nil
}
