package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context) (*Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Settings), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, s *Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func TestService_Update_Validation(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	t.Run("Threshold Out Of Range", func(t *testing.T) {
		err := svc.Update(context.Background(), &Settings{SimilarityThreshold: 1.2, TopK: 5})
		assert.Error(t, err)
	})

	t.Run("Zero TopK", func(t *testing.T) {
		err := svc.Update(context.Background(), &Settings{SimilarityThreshold: 0.5, TopK: 0})
		assert.Error(t, err)
	})

	t.Run("Valid", func(t *testing.T) {
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		err := svc.Update(context.Background(), &Settings{SimilarityThreshold: 0.7, TopK: 3})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
