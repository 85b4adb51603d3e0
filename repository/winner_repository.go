package repository

import (
	"context"
	"fmt"
	"time"

	"luckywheel/database"
	"luckywheel/models"

	"github.com/jackc/pgx/v5"
)

// WinnerRepository implements the service.WinnerRepository interface
type WinnerRepository struct {
	q queryable
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(db *database.DB) *WinnerRepository {
	return &WinnerRepository{q: db.Pool}
}

// newWinnerRepositoryWithTx creates a new winner repository with a transaction
func newWinnerRepositoryWithTx(tx queryable) *WinnerRepository {
	return &WinnerRepository{q: tx}
}

const winnerColumns = `id, public_id, prize_id, participant_id, email, name, claim_code, status, expires_at, claimed_at, created_at`

func scanWinner(row pgx.Row) (*models.Winner, error) {
	var winner models.Winner
	err := row.Scan(
		&winner.ID,
		&winner.PublicID,
		&winner.PrizeID,
		&winner.ParticipantID,
		&winner.Email,
		&winner.Name,
		&winner.ClaimCode,
		&winner.Status,
		&winner.ExpiresAt,
		&winner.ClaimedAt,
		&winner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &winner, nil
}

// Create persists a new winner record with its claim code
func (r *WinnerRepository) Create(ctx context.Context, winner *models.Winner) error {
	query := `
		INSERT INTO winners (public_id, prize_id, participant_id, email, name, claim_code, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		winner.PublicID,
		winner.PrizeID,
		winner.ParticipantID,
		winner.Email,
		winner.Name,
		winner.ClaimCode,
		winner.Status,
		winner.ExpiresAt,
	).Scan(&winner.ID, &winner.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create winner for prize %d: %w", winner.PrizeID, err)
	}

	return nil
}

// GetByClaimCode retrieves a winner by claim code
func (r *WinnerRepository) GetByClaimCode(ctx context.Context, claimCode string) (*models.Winner, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM winners
		WHERE claim_code = $1
	`, winnerColumns)

	winner, err := scanWinner(r.q.QueryRow(ctx, query, claimCode))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get winner by claim code: %w", err)
	}

	return winner, nil
}

// Redeem atomically flips a pending, unexpired claim to claimed. Returns nil
// without error when no such claim matched; the caller disambiguates.
func (r *WinnerRepository) Redeem(ctx context.Context, claimCode string, when time.Time) (*models.Winner, error) {
	query := fmt.Sprintf(`
		UPDATE winners
		SET status = $2, claimed_at = $3
		WHERE claim_code = $1 AND status = $4 AND expires_at > $3
		RETURNING %s
	`, winnerColumns)

	winner, err := scanWinner(r.q.QueryRow(ctx, query, claimCode, models.ClaimStatusClaimed, when, models.ClaimStatusPending))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem claim: %w", err)
	}

	return winner, nil
}

// ExpireOverdue marks all overdue pending claims as expired
func (r *WinnerRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE winners
		SET status = $1
		WHERE status = $2 AND expires_at <= $3
	`

	result, err := r.q.Exec(ctx, query, models.ClaimStatusExpired, models.ClaimStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue claims: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountByPrize returns the number of winner records for a prize
func (r *WinnerRepository) CountByPrize(ctx context.Context, prizeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM winners
		WHERE prize_id = $1
	`

	var count int
	if err := r.q.QueryRow(ctx, query, prizeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count winners for prize %d: %w", prizeID, err)
	}

	return count, nil
}
