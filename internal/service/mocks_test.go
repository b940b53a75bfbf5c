package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"kairos/internal/model"
	"kairos/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockStressRepository is a mock implementation of StressRepository.
type MockStressRepository struct {
	mock.Mock
}

func (m *MockStressRepository) Create(ctx context.Context, stress *model.Stress) error {
	args := m.Called(ctx, stress)
	return args.Error(0)
}

func (m *MockStressRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Stress, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stress), args.Error(1)
}

func (m *MockStressRepository) ListByUser(ctx context.Context, userID uint) ([]model.Stress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Stress), args.Error(1)
}

func (m *MockStressRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockStressRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockStressRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStrengthRepository is a mock implementation of StrengthRepository.
type MockStrengthRepository struct {
	mock.Mock
}

func (m *MockStrengthRepository) Append(ctx context.Context, reading *model.StrengthReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockStrengthRepository) History(ctx context.Context, stressID uint) ([]model.StrengthReading, error) {
	args := m.Called(ctx, stressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StrengthReading), args.Error(1)
}

func (m *MockStrengthRepository) LatestFor(ctx context.Context, stressIDs []uint) (map[uint]model.LatestStrength, error) {
	args := m.Called(ctx, stressIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]model.LatestStrength), args.Error(1)
}

func (m *MockStrengthRepository) DeleteByStress(ctx context.Context, stressID uint) error {
	args := m.Called(ctx, stressID)
	return args.Error(0)
}

// MockStore hands out the mocked repositories and runs transactions inline.
type MockStore struct {
	mock.Mock
	users     *MockUserRepository
	stresses  *MockStressRepository
	strengths *MockStrengthRepository
}

func newMockStore() *MockStore {
	return &MockStore{
		users:     new(MockUserRepository),
		stresses:  new(MockStressRepository),
		strengths: new(MockStrengthRepository),
	}
}

func (m *MockStore) Users() repository.UserRepository         { return m.users }
func (m *MockStore) Stresses() repository.StressRepository    { return m.stresses }
func (m *MockStore) Strengths() repository.StrengthRepository { return m.strengths }

func (m *MockStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, m)
}

func (m *MockStore) AssertExpectations(t mock.TestingT) {
	m.users.AssertExpectations(t)
	m.stresses.AssertExpectations(t)
	m.strengths.AssertExpectations(t)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
