package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admissions/internal/cache"
	"admissions/internal/model"
)

// MockProgramRepository is a mock implementation of ProgramRepository.
type MockProgramRepository struct {
	mock.Mock
}

func (m *MockProgramRepository) ListOpen(ctx context.Context) ([]model.Program, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Program), args.Error(1)
}

func (m *MockProgramRepository) Upsert(ctx context.Context, program *model.Program) error {
	args := m.Called(ctx, program)
	return args.Error(0)
}

func newCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return cache.NewFromClient(rc), mr
}

func TestProgramService_ListOpenIsCached(t *testing.T) {
	repo := new(MockProgramRepository)
	c, mr := newCache(t)
	svc := NewProgramService(repo, c, time.Minute)

	programs := []model.Program{{Name: "Computer Science", Degree: "BSc", ApplicationFee: decimal.RequireFromString("50.00"), Open: true}}
	repo.On("ListOpen", mock.Anything).Return(programs, nil).Once()

	first, err := svc.ListOpen(context.Background())
	require.NoError(t, err)
	second, err := svc.ListOpen(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Computer Science", second[0].Name)
	assert.True(t, first[0].ApplicationFee.Equal(second[0].ApplicationFee))
	assert.True(t, mr.Exists(programsCacheKey))
	repo.AssertExpectations(t)
}

func TestProgramService_SaveInvalidatesCache(t *testing.T) {
	repo := new(MockProgramRepository)
	c, mr := newCache(t)
	svc := NewProgramService(repo, c, time.Minute)
	require.NoError(t, mr.Set(programsCacheKey, "[]"))

	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Program")).Return(nil).Twice()
	n, err := svc.Save(context.Background(), []model.Program{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists(programsCacheKey))
}

func TestProgramService_NoCacheAndErrors(t *testing.T) {
	repo := new(MockProgramRepository)
	svc := NewProgramService(repo, nil, 0)

	repo.On("ListOpen", mock.Anything).Return(nil, nil).Once()
	got, err := svc.ListOpen(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	repo.On("ListOpen", mock.Anything).Return(nil, errors.New("db down")).Once()
	_, err = svc.ListOpen(context.Background())
	assert.Error(t, err)
}
