package service

import (
	"context"
	"testing"

	"luckywheel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignService_GetCampaign(t *testing.T) {
	ctx := context.Background()

	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	campaigns := new(MockCampaignRepository)
	prizes := new(MockPrizeRepository)
	uow.SetRepositories(campaigns, nil, prizes, nil, nil)

	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	campaign := &models.Campaign{ID: 1, Name: "Summer Reviews"}
	pool := []*models.Prize{{ID: 3, Probability: 1.0, Quantity: 5, Remaining: 5}}
	campaigns.On("GetByID", ctx, int64(1)).Return(campaign, nil)
	prizes.On("GetByCampaign", ctx, int64(1)).Return(pool, nil)

	svc := NewCampaignService(factory)
	got, gotPrizes, err := svc.GetCampaign(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, campaign, got)
	assert.Equal(t, pool, gotPrizes)

	campaigns.AssertExpectations(t)
	prizes.AssertExpectations(t)
}

func TestCampaignService_GetCampaign_NotFound(t *testing.T) {
	ctx := context.Background()

	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	campaigns := new(MockCampaignRepository)
	uow.SetRepositories(campaigns, nil, nil, nil, nil)

	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback").Return(nil)

	campaigns.On("GetByID", ctx, int64(99)).Return(nil, nil)

	svc := NewCampaignService(factory)
	_, _, err := svc.GetCampaign(ctx, 99)

	assert.ErrorIs(t, err, ErrCampaignNotFound)
	uow.AssertNotCalled(t, "Commit")
}
