package service

import (
	"context"
	"time"

	"luckywheel/events"
	"luckywheel/models"

	"github.com/stretchr/testify/mock"
)

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

// MockStoreRepository is a mock implementation of StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) IsDrawAllowed(ctx context.Context, storeID int64) (bool, error) {
	args := m.Called(ctx, storeID)
	return args.Bool(0), args.Error(1)
}

// MockPrizeRepository is a mock implementation of PrizeRepository
type MockPrizeRepository struct {
	mock.Mock
}

func (m *MockPrizeRepository) GetByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) GetAvailableByCampaign(ctx context.Context, campaignID int64) ([]*models.Prize, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) DecrementStock(ctx context.Context, prizeID int64) (*models.Prize, error) {
	args := m.Called(ctx, prizeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) IncrementStock(ctx context.Context, prizeID int64) error {
	args := m.Called(ctx, prizeID)
	return args.Error(0)
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) HasParticipated(ctx context.Context, campaignID int64, email string) (bool, error) {
	args := m.Called(ctx, campaignID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) RegisterAttempt(ctx context.Context, campaignID int64, email, name string, metadata map[string]any) (*models.Participant, error) {
	args := m.Called(ctx, campaignID, email, name, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) MarkPlayed(ctx context.Context, participantID int64, when time.Time) error {
	args := m.Called(ctx, participantID, when)
	return args.Error(0)
}

func (m *MockParticipantRepository) UnmarkPlayed(ctx context.Context, participantID int64) error {
	args := m.Called(ctx, participantID)
	return args.Error(0)
}

// MockWinnerRepository is a mock implementation of WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) Create(ctx context.Context, winner *models.Winner) error {
	args := m.Called(ctx, winner)
	return args.Error(0)
}

func (m *MockWinnerRepository) GetByClaimCode(ctx context.Context, claimCode string) (*models.Winner, error) {
	args := m.Called(ctx, claimCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Winner), args.Error(1)
}

func (m *MockWinnerRepository) Redeem(ctx context.Context, claimCode string, when time.Time) (*models.Winner, error) {
	args := m.Called(ctx, claimCode, when)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Winner), args.Error(1)
}

func (m *MockWinnerRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWinnerRepository) CountByPrize(ctx context.Context, prizeID int64) (int, error) {
	args := m.Called(ctx, prizeID)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher collects published events without expectations; used where a
// test only cares that the transaction succeeds
type noopPublisher struct {
	published []events.Event
}

func (p *noopPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// attached with SetRepositories before use.
type MockUnitOfWork struct {
	mock.Mock

	campaignRepo    CampaignRepository
	storeRepo       StoreRepository
	prizeRepo       PrizeRepository
	participantRepo ParticipantRepository
	winnerRepo      WinnerRepository
	publisher       EventPublisher
}

// SetRepositories attaches the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(
	campaignRepo CampaignRepository,
	storeRepo StoreRepository,
	prizeRepo PrizeRepository,
	participantRepo ParticipantRepository,
	winnerRepo WinnerRepository,
) {
	m.campaignRepo = campaignRepo
	m.storeRepo = storeRepo
	m.prizeRepo = prizeRepo
	m.participantRepo = participantRepo
	m.winnerRepo = winnerRepo
	m.publisher = &noopPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) CampaignRepository() CampaignRepository {
	return m.campaignRepo
}

func (m *MockUnitOfWork) StoreRepository() StoreRepository {
	return m.storeRepo
}

func (m *MockUnitOfWork) PrizeRepository() PrizeRepository {
	return m.prizeRepo
}

func (m *MockUnitOfWork) ParticipantRepository() ParticipantRepository {
	return m.participantRepo
}

func (m *MockUnitOfWork) WinnerRepository() WinnerRepository {
	return m.winnerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
