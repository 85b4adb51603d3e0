package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/mail"
	"strings"
	"time"

	"luckywheel/events"
	"luckywheel/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// compensationTimeout bounds the rollback of a half-finished draw. The
// compensation runs on its own context so the caller's timeout cannot leave
// stock permanently off by one.
const compensationTimeout = 5 * time.Second

type drawService struct {
	uowFactory UnitOfWorkFactory

	// Pool-backed repositories for the post-commit phase. The stock decrement
	// and the winner insert deliberately run outside any shared transaction:
	// the decrement is a single conditional statement and the winner insert is
	// compensated on failure, saga style.
	prizeRepo       PrizeRepository
	participantRepo ParticipantRepository
	winnerRepo      WinnerRepository

	eventBus    *events.Bus
	gracePeriod time.Duration

	now       func() time.Time
	randFloat func() float64
}

// NewDrawService creates a new draw service
func NewDrawService(
	uowFactory UnitOfWorkFactory,
	prizeRepo PrizeRepository,
	participantRepo ParticipantRepository,
	winnerRepo WinnerRepository,
	eventBus *events.Bus,
	gracePeriod time.Duration,
) DrawService {
	return &drawService{
		uowFactory:      uowFactory,
		prizeRepo:       prizeRepo,
		participantRepo: participantRepo,
		winnerRepo:      winnerRepo,
		eventBus:        eventBus,
		gracePeriod:     gracePeriod,
		now:             time.Now,
		randFloat:       rand.Float64,
	}
}

func (s *drawService) Draw(ctx context.Context, req DrawRequest) (*models.DrawResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	now := s.now()

	// Steps 2-6 run in one transaction: the participant's attempt and their
	// single play are claimed together, before any stock is touched.
	participant, prize, err := s.prepareDraw(ctx, req.CampaignID, email, req.Name, req.Metadata, now)
	if err != nil {
		return nil, err
	}

	// Step 7: atomic conditional decrement. Losing the race to a concurrent
	// draw is not retried silently with another prize; the play is released
	// and the caller retries the whole draw against a fresh stock snapshot.
	updatedPrize, err := s.prizeRepo.DecrementStock(ctx, prize.ID)
	if err != nil {
		s.releasePlay(participant.ID)
		return nil, newDrawError("decrement stock", err)
	}
	prize = updatedPrize

	// Step 8: issue the claim; on failure compensate the decrement.
	winner, err := s.issueClaim(ctx, prize, participant, email, req.Name, now)
	if err != nil {
		s.compensate(prize, participant.ID)
		return nil, newDrawError("issue claim", err)
	}

	s.eventBus.Emit(context.WithoutCancel(ctx), events.DrawCompletedEvent{
		WinnerID:   winner.PublicID,
		CampaignID: req.CampaignID,
		PrizeID:    prize.ID,
		PrizeName:  prize.Name,
		Email:      email,
		ExpiresAt:  winner.ExpiresAt,
	})
	if !prize.IsAvailable() {
		s.eventBus.Emit(context.WithoutCancel(ctx), events.PrizeExhaustedEvent{
			PrizeID:    prize.ID,
			CampaignID: req.CampaignID,
			PrizeName:  prize.Name,
		})
	}

	return &models.DrawResult{
		WinnerID:            winner.PublicID,
		PrizeID:             prize.ID,
		PrizeName:           prize.Name,
		PrizeDescription:    prize.Description,
		PrizeValue:          prize.Value,
		ClaimCode:           winner.ClaimCode,
		ExpiresAt:           winner.ExpiresAt,
		WheelSpinDurationMs: wheelSpinDuration(prize.Value),
	}, nil
}

// prepareDraw validates the campaign, guards participation, registers the
// attempt, selects a prize and claims the participant's single play, all in
// one committed transaction.
func (s *drawService) prepareDraw(ctx context.Context, campaignID int64, email, name string, metadata map[string]any, now time.Time) (*models.Participant, *models.Prize, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, newDrawError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	campaign, err := uow.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, nil, newDrawError("load campaign", err)
	}
	if campaign == nil {
		return nil, nil, ErrCampaignNotFound
	}

	allowed, err := uow.StoreRepository().IsDrawAllowed(ctx, campaign.StoreID)
	if err != nil {
		return nil, nil, newDrawError("check store", err)
	}
	if !allowed {
		return nil, nil, ErrStoreDrawsDisabled
	}

	if !campaign.IsRunning(now) {
		return nil, nil, ErrCampaignNotActive
	}

	played, err := uow.ParticipantRepository().HasParticipated(ctx, campaign.ID, email)
	if err != nil {
		return nil, nil, newDrawError("check participation", err)
	}
	if played {
		return nil, nil, ErrAlreadyParticipated
	}

	participant, err := uow.ParticipantRepository().RegisterAttempt(ctx, campaign.ID, email, name, metadata)
	if err != nil {
		return nil, nil, newDrawError("register participant", err)
	}
	uow.EventBus().Publish(events.ParticipantRegisteredEvent{
		ParticipantID: participant.ID,
		CampaignID:    campaign.ID,
		Email:         email,
		PlayCount:     participant.PlayCount,
	})

	prize, err := s.selectPrize(ctx, uow, campaign.ID)
	if err != nil {
		return nil, nil, err
	}

	// Claim the participant's single play. Under a concurrent draw for the
	// same email this conditional update is what loses cleanly.
	if err := uow.ParticipantRepository().MarkPlayed(ctx, participant.ID, now); err != nil {
		if errors.Is(err, models.ErrAlreadyPlayed) {
			return nil, nil, ErrAlreadyParticipated
		}
		return nil, nil, newDrawError("mark played", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, newDrawError("commit", err)
	}

	return participant, prize, nil
}

// selectPrize builds a distribution over the prizes that still have stock and
// draws one. Exhausted prizes drop out of the pool, so the draw keeps awarding
// as long as any stock exists; only total exhaustion fails.
func (s *drawService) selectPrize(ctx context.Context, uow UnitOfWork, campaignID int64) (*models.Prize, error) {
	available, err := uow.PrizeRepository().GetAvailableByCampaign(ctx, campaignID)
	if err != nil {
		return nil, newDrawError("load prizes", err)
	}
	if len(available) == 0 {
		return nil, ErrNoPrizesAvailable
	}

	dist, err := models.NewPartialDistribution(available)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPrizesAvailable, err)
	}

	prize := dist.Select(s.randFloat())
	if prize == nil || !prize.IsAvailable() {
		// Defensive re-check against a stale read
		return nil, ErrNoPrizesAvailable
	}
	return prize, nil
}

// issueClaim generates the claim code and persists the winner record
func (s *drawService) issueClaim(ctx context.Context, prize *models.Prize, participant *models.Participant, email, name string, now time.Time) (*models.Winner, error) {
	claimCode, err := generateClaimCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate claim code: %w", err)
	}

	winner := &models.Winner{
		PublicID:      uuid.New(),
		PrizeID:       prize.ID,
		ParticipantID: participant.ID,
		Email:         email,
		Name:          name,
		ClaimCode:     claimCode,
		Status:        models.ClaimStatusPending,
		ExpiresAt:     now.Add(s.gracePeriod),
	}

	if err := s.winnerRepo.Create(ctx, winner); err != nil {
		return nil, fmt.Errorf("failed to create winner record: %w", err)
	}

	return winner, nil
}

// compensate undoes a half-finished draw: the stock taken in step 7 is
// restored and the participant's play is released. Runs on its own context so
// the caller's cancellation cannot abort it.
func (s *drawService) compensate(prize *models.Prize, participantID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
	defer cancel()

	if err := s.prizeRepo.IncrementStock(ctx, prize.ID); err != nil {
		log.WithFields(log.Fields{
			"prizeID":    prize.ID,
			"campaignID": prize.CampaignID,
			"error":      err,
		}).Error("Stock compensation failed; prize stock is off by one")
		s.eventBus.Emit(ctx, events.CompensationFailedEvent{
			PrizeID:    prize.ID,
			CampaignID: prize.CampaignID,
			Reason:     err.Error(),
		})
	}

	s.releasePlay(participantID)
}

// releasePlay rolls back the played flag so a failed draw does not burn the
// participant's only attempt.
func (s *drawService) releasePlay(participantID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
	defer cancel()

	if err := s.participantRepo.UnmarkPlayed(ctx, participantID); err != nil {
		log.WithFields(log.Fields{
			"participantID": participantID,
			"error":         err,
		}).Error("Failed to release participant play after failed draw")
	}
}

// normalizeEmail validates the participant email and lowercases it so the
// (campaign, email) uniqueness is case-insensitive.
func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", err
	}
	// Reject display-name forms like "Jane <jane@example.com>"
	if addr.Address != trimmed {
		return "", fmt.Errorf("address must be a bare email")
	}
	return strings.ToLower(trimmed), nil
}

// wheelSpinDuration derives the cosmetic spin time from the prize value so
// bigger prizes get a longer build-up. Purely presentational.
func wheelSpinDuration(value int64) int64 {
	const (
		baseMs = 3000
		maxMs  = 8000
	)
	duration := baseMs + value*10
	if duration > maxMs {
		return maxMs
	}
	return duration
}
