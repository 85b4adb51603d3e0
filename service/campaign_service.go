package service

import (
	"context"

	"luckywheel/models"
)

type campaignService struct {
	uowFactory UnitOfWorkFactory
}

// NewCampaignService creates a new campaign service
func NewCampaignService(uowFactory UnitOfWorkFactory) CampaignService {
	return &campaignService{
		uowFactory: uowFactory,
	}
}

func (s *campaignService) GetCampaign(ctx context.Context, id int64) (*models.Campaign, []*models.Prize, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, newDrawError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	campaign, err := uow.CampaignRepository().GetByID(ctx, id)
	if err != nil {
		return nil, nil, newDrawError("load campaign", err)
	}
	if campaign == nil {
		return nil, nil, ErrCampaignNotFound
	}

	prizes, err := uow.PrizeRepository().GetByCampaign(ctx, id)
	if err != nil {
		return nil, nil, newDrawError("load prizes", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, newDrawError("commit", err)
	}

	return campaign, prizes, nil
}
