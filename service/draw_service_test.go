package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"luckywheel/events"
	"luckywheel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type drawFixture struct {
	factory      *MockUnitOfWorkFactory
	uow          *MockUnitOfWork
	campaigns    *MockCampaignRepository
	stores       *MockStoreRepository
	prizes       *MockPrizeRepository
	participants *MockParticipantRepository
	winners      *MockWinnerRepository
	service      *drawService
}

// newDrawFixture wires a draw service against mocks. The same repository
// mocks back both the transactional and the pool-backed phase.
func newDrawFixture() *drawFixture {
	f := &drawFixture{
		factory:      new(MockUnitOfWorkFactory),
		uow:          new(MockUnitOfWork),
		campaigns:    new(MockCampaignRepository),
		stores:       new(MockStoreRepository),
		prizes:       new(MockPrizeRepository),
		participants: new(MockParticipantRepository),
		winners:      new(MockWinnerRepository),
	}
	f.uow.SetRepositories(f.campaigns, f.stores, f.prizes, f.participants, f.winners)

	svc := NewDrawService(f.factory, f.prizes, f.participants, f.winners, events.NewBus(), 30*24*time.Hour)
	f.service = svc.(*drawService)
	f.service.now = func() time.Time { return testNow }
	f.service.randFloat = func() float64 { return 0.0 }
	return f
}

func (f *drawFixture) expectTransaction(ctx context.Context) {
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
}

func (f *drawFixture) assertExpectations(t *testing.T) {
	f.factory.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.campaigns.AssertExpectations(t)
	f.stores.AssertExpectations(t)
	f.prizes.AssertExpectations(t)
	f.participants.AssertExpectations(t)
	f.winners.AssertExpectations(t)
}

func runningCampaign() *models.Campaign {
	return &models.Campaign{
		ID:       1,
		StoreID:  7,
		Name:     "Summer Reviews",
		IsActive: true,
		StartsAt: testNow.Add(-24 * time.Hour),
		EndsAt:   testNow.Add(24 * time.Hour),
	}
}

func availablePrize(id int64, probability float64, remaining int) *models.Prize {
	return &models.Prize{
		ID:          id,
		CampaignID:  1,
		Name:        "Coffee Voucher",
		Value:       50,
		Probability: probability,
		Quantity:    10,
		Remaining:   remaining,
	}
}

func TestDrawService_Draw_Success(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.expectTransaction(ctx)

	prize := availablePrize(3, 0.4, 5)
	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "Jane", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{prize}, nil)
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(nil)

	decremented := availablePrize(3, 0.4, 4)
	f.prizes.On("DecrementStock", ctx, int64(3)).Return(decremented, nil)
	f.winners.On("Create", ctx, mock.MatchedBy(func(w *models.Winner) bool {
		return w.PrizeID == 3 &&
			w.ParticipantID == 11 &&
			w.Email == "jane@example.com" &&
			w.Status == models.ClaimStatusPending &&
			len(w.ClaimCode) == claimCodeLength &&
			w.ExpiresAt.Equal(testNow.Add(30*24*time.Hour))
	})).Return(nil)

	result, err := f.service.Draw(ctx, DrawRequest{
		Email:      "Jane@Example.com",
		Name:       "Jane",
		CampaignID: 1,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(3), result.PrizeID)
	assert.Equal(t, "Coffee Voucher", result.PrizeName)
	assert.Len(t, result.ClaimCode, claimCodeLength)
	assert.Equal(t, testNow.Add(30*24*time.Hour), result.ExpiresAt)
	assert.Equal(t, int64(3500), result.WheelSpinDurationMs)

	f.assertExpectations(t)
}

func TestDrawService_Draw_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no at sign", "jane.example.com"},
		{"display name form", "Jane <jane@example.com>"},
		{"spaces inside", "jane doe@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Draw(ctx, DrawRequest{Email: tt.email, CampaignID: 1})
			assert.ErrorIs(t, err, ErrInvalidEmail)
		})
	}

	// Validation failures never open a transaction
	f.factory.AssertNotCalled(t, "Create")
}

func TestDrawService_Draw_CampaignNotFound(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.campaigns.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 99})

	assert.ErrorIs(t, err, ErrCampaignNotFound)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestDrawService_Draw_StoreDrawsDisabled(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(false, nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	assert.ErrorIs(t, err, ErrStoreDrawsDisabled)
}

func TestDrawService_Draw_CampaignOutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	ended := runningCampaign()
	ended.EndsAt = testNow.Add(-time.Hour)

	f.campaigns.On("GetByID", ctx, int64(1)).Return(ended, nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	assert.ErrorIs(t, err, ErrCampaignNotActive)
}

func TestDrawService_Draw_AlreadyParticipated(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(true, nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	assert.ErrorIs(t, err, ErrAlreadyParticipated)
	f.participants.AssertNotCalled(t, "RegisterAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawService_Draw_NoPrizesAvailable(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{}, nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	assert.ErrorIs(t, err, ErrNoPrizesAvailable)
	f.uow.AssertNotCalled(t, "Commit")
	f.participants.AssertNotCalled(t, "MarkPlayed", mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawService_Draw_LosesMarkPlayedRace(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 2}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{availablePrize(3, 0.4, 5)}, nil)
	// A concurrent draw for the same email got there first
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(models.ErrAlreadyPlayed)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	assert.ErrorIs(t, err, ErrAlreadyParticipated)
	f.prizes.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything)
}

func TestDrawService_Draw_DecrementRaceReleasesPlay(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.expectTransaction(ctx)

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{availablePrize(3, 0.4, 1)}, nil)
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(nil)

	// The last unit went to a concurrent draw between selection and decrement
	f.prizes.On("DecrementStock", ctx, int64(3)).Return(nil, models.ErrPrizeExhausted)
	f.participants.On("UnmarkPlayed", mock.Anything, int64(11)).Return(nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	var drawErr *DrawError
	require.ErrorAs(t, err, &drawErr)
	assert.Equal(t, "decrement stock", drawErr.Step)
	assert.ErrorIs(t, err, models.ErrPrizeExhausted)

	f.winners.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.participants.AssertExpectations(t)
}

func TestDrawService_Draw_WinnerCreateFailureCompensates(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.expectTransaction(ctx)

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{availablePrize(3, 0.4, 5)}, nil)
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(nil)
	f.prizes.On("DecrementStock", ctx, int64(3)).Return(availablePrize(3, 0.4, 4), nil)

	f.winners.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	// Compensation restores the stock and releases the play
	f.prizes.On("IncrementStock", mock.Anything, int64(3)).Return(nil)
	f.participants.On("UnmarkPlayed", mock.Anything, int64(11)).Return(nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	var drawErr *DrawError
	require.ErrorAs(t, err, &drawErr)
	assert.Equal(t, "issue claim", drawErr.Step)

	f.assertExpectations(t)
}

func TestDrawService_Draw_CompensationFailureStillReleasesPlay(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.expectTransaction(ctx)

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{availablePrize(3, 0.4, 5)}, nil)
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(nil)
	f.prizes.On("DecrementStock", ctx, int64(3)).Return(availablePrize(3, 0.4, 4), nil)
	f.winners.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	f.prizes.On("IncrementStock", mock.Anything, int64(3)).Return(errors.New("still down"))
	f.participants.On("UnmarkPlayed", mock.Anything, int64(11)).Return(nil)

	_, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	var drawErr *DrawError
	require.ErrorAs(t, err, &drawErr)
	f.participants.AssertExpectations(t)
}

func TestDrawService_Draw_WeightedSelection(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture()
	f.expectTransaction(ctx)

	// Two prizes left with 0.3 and 0.1 of the original mass. A random value of
	// 0.9 targets the second prize after rescaling by the remaining 0.4.
	f.service.randFloat = func() float64 { return 0.9 }

	participant := &models.Participant{ID: 11, CampaignID: 1, Email: "jane@example.com", PlayCount: 1}
	first := availablePrize(3, 0.3, 5)
	second := availablePrize(4, 0.1, 2)

	f.campaigns.On("GetByID", ctx, int64(1)).Return(runningCampaign(), nil)
	f.stores.On("IsDrawAllowed", ctx, int64(7)).Return(true, nil)
	f.participants.On("HasParticipated", ctx, int64(1), "jane@example.com").Return(false, nil)
	f.participants.On("RegisterAttempt", ctx, int64(1), "jane@example.com", "", mock.Anything).Return(participant, nil)
	f.prizes.On("GetAvailableByCampaign", ctx, int64(1)).Return([]*models.Prize{first, second}, nil)
	f.participants.On("MarkPlayed", ctx, int64(11), testNow).Return(nil)
	f.prizes.On("DecrementStock", ctx, int64(4)).Return(availablePrize(4, 0.1, 1), nil)
	f.winners.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.service.Draw(ctx, DrawRequest{Email: "jane@example.com", CampaignID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(4), result.PrizeID)

	f.assertExpectations(t)
}
