package repository

import (
	"context"
	"fmt"
	"time"

	"luckywheel/database"
	"luckywheel/models"
)

// ParticipantRepository implements the service.ParticipantRepository interface
type ParticipantRepository struct {
	q queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db.Pool}
}

// newParticipantRepositoryWithTx creates a new participant repository with a transaction
func newParticipantRepositoryWithTx(tx queryable) *ParticipantRepository {
	return &ParticipantRepository{q: tx}
}

// HasParticipated reports whether the email has already played the campaign
func (r *ParticipantRepository) HasParticipated(ctx context.Context, campaignID int64, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM participants
			WHERE campaign_id = $1 AND email = $2 AND has_played = TRUE
		)
	`

	var played bool
	err := r.q.QueryRow(ctx, query, campaignID, email).Scan(&played)
	if err != nil {
		return false, fmt.Errorf("failed to check participation for campaign %d: %w", campaignID, err)
	}

	return played, nil
}

// RegisterAttempt creates the participant record for (campaign, email) or
// bumps its play count. The unique constraint on (campaign_id, email) makes
// concurrent first attempts converge on one row.
func (r *ParticipantRepository) RegisterAttempt(ctx context.Context, campaignID int64, email, name string, metadata map[string]any) (*models.Participant, error) {
	query := `
		INSERT INTO participants (campaign_id, email, name, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (campaign_id, email) DO UPDATE
		SET play_count = participants.play_count + 1, updated_at = NOW()
		RETURNING id, campaign_id, email, name, has_played, play_count, played_at, created_at, updated_at
	`

	var participant models.Participant
	err := r.q.QueryRow(ctx, query, campaignID, email, name, metadata).Scan(
		&participant.ID,
		&participant.CampaignID,
		&participant.Email,
		&participant.Name,
		&participant.HasPlayed,
		&participant.PlayCount,
		&participant.PlayedAt,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant for campaign %d: %w", campaignID, err)
	}
	participant.Metadata = metadata

	return &participant, nil
}

// MarkPlayed atomically claims the participant's single play. The conditional
// update is what makes a duplicate draw lose cleanly: only one concurrent
// request can flip has_played from FALSE to TRUE.
func (r *ParticipantRepository) MarkPlayed(ctx context.Context, participantID int64, when time.Time) error {
	query := `
		UPDATE participants
		SET has_played = TRUE, played_at = $2, updated_at = NOW()
		WHERE id = $1 AND has_played = FALSE
	`

	result, err := r.q.Exec(ctx, query, participantID, when)
	if err != nil {
		return fmt.Errorf("failed to mark participant %d as played: %w", participantID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d: %w", participantID, models.ErrAlreadyPlayed)
	}

	return nil
}

// UnmarkPlayed releases a previously claimed play after a failed draw
func (r *ParticipantRepository) UnmarkPlayed(ctx context.Context, participantID int64) error {
	query := `
		UPDATE participants
		SET has_played = FALSE, played_at = NULL, updated_at = NOW()
		WHERE id = $1 AND has_played = TRUE
	`

	result, err := r.q.Exec(ctx, query, participantID)
	if err != nil {
		return fmt.Errorf("failed to unmark participant %d: %w", participantID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d was not marked as played", participantID)
	}

	return nil
}
