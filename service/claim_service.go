package service

import (
	"context"
	"time"

	"luckywheel/events"
	"luckywheel/models"
)

type claimService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewClaimService creates a new claim service
func NewClaimService(uowFactory UnitOfWorkFactory) ClaimService {
	return &claimService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *claimService) Redeem(ctx context.Context, claimCode string) (*models.Winner, error) {
	now := s.now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, newDrawError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	winner, err := uow.WinnerRepository().Redeem(ctx, claimCode, now)
	if err != nil {
		return nil, newDrawError("redeem claim", err)
	}
	if winner == nil {
		// The conditional update matched nothing; look the claim up to tell
		// the caller why.
		existing, err := uow.WinnerRepository().GetByClaimCode(ctx, claimCode)
		if err != nil {
			return nil, newDrawError("load claim", err)
		}
		switch {
		case existing == nil:
			return nil, ErrClaimNotFound
		case existing.Status == models.ClaimStatusClaimed:
			return nil, ErrClaimAlreadyRedeemed
		default:
			return nil, ErrClaimExpired
		}
	}

	uow.EventBus().Publish(events.ClaimRedeemedEvent{
		WinnerID:  winner.PublicID,
		PrizeID:   winner.PrizeID,
		ClaimCode: winner.ClaimCode,
	})

	if err := uow.Commit(); err != nil {
		return nil, newDrawError("commit", err)
	}

	return winner, nil
}

func (s *claimService) ExpireOverdue(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, newDrawError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	expired, err := uow.WinnerRepository().ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, newDrawError("expire claims", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, newDrawError("commit", err)
	}

	return expired, nil
}
