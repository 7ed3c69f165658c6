package lead

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, l *Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, ownerID, id string) (*Lead, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lead), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, ownerID, status string) ([]Lead, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).([]Lead), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, l *Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestCreate_DefaultsToNew(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(l *Lead) bool {
		return l.Status == "new"
	})).Return(nil)

	l := &Lead{OwnerID: "owner-1", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, svc.Create(context.Background(), l))
	repo.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(new(MockRepository))

	cases := []struct {
		name string
		lead Lead
	}{
		{"missing name", Lead{Email: "a@b.com"}},
		{"missing email", Lead{Name: "Ada"}},
		{"bad email", Lead{Name: "Ada", Email: "not-an-email"}},
		{"bad status", Lead{Name: "Ada", Email: "a@b.com", Status: "frozen"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(context.Background(), &tc.lead)
			require.Error(t, err)
		})
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(new(MockRepository))

	_, err := svc.List(context.Background(), "owner-1", "frozen")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestList_PassesStatusFilter(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("List", mock.Anything, "owner-1", "qualified").Return([]Lead{{ID: "lead-1"}}, nil)

	leads, err := svc.List(context.Background(), "owner-1", "qualified")
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestUpdateStatus_Valid(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Get", mock.Anything, "owner-1", "lead-1").
		Return(&Lead{ID: "lead-1", OwnerID: "owner-1", Name: "Ada", Email: "a@b.com", Status: "new"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(l *Lead) bool {
		return l.Status == "won"
	})).Return(nil)

	l, err := svc.UpdateStatus(context.Background(), "owner-1", "lead-1", "won")
	require.NoError(t, err)
	assert.Equal(t, "won", l.Status)
}

func TestUpdateStatus_Invalid(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), "owner-1", "lead-1", "frozen")
	assert.ErrorIs(t, err, ErrBadStatus)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Get", mock.Anything, "owner-1", "missing").Return(nil, sql.ErrNoRows)

	err := svc.Delete(context.Background(), "owner-1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
