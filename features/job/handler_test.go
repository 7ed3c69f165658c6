package job_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/asefahmed500/Cally-IO-sub000/features/job"
	"github.com/asefahmed500/Cally-IO-sub000/internal/config"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Save(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockRepo) List(ctx context.Context) ([]job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.Job), args.Error(1)
}

func (m *MockRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

func TestHandlerList(t *testing.T) {
	repo := new(MockRepo)
	h := job.NewHandler(job.NewService(repo, new(MockPublisher)))

	repo.On("List", mock.Anything).Return([]job.Job{
		{ID: "job-1", DocumentID: "doc-1", Error: "quota", CreatedAt: time.Now()},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)
	assert.Contains(t, rr.Body.String(), `"document_id":"doc-1"`)
	repo.AssertExpectations(t)
}

func TestHandlerList_EmptyIsArray(t *testing.T) {
	repo := new(MockRepo)
	h := job.NewHandler(job.NewService(repo, new(MockPublisher)))

	repo.On("List", mock.Anything).Return([]job.Job(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"count":0}}`, rr.Body.String())
}

func TestHandlerRetry_Success(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)
	h := job.NewHandler(job.NewService(repo, pub))

	repo.On("Get", mock.Anything, "job-1").Return(&job.Job{ID: "job-1", DocumentID: "doc-1", Payload: []byte("{}")}, nil)
	pub.On("Publish", config.TopicIngestTask, mock.Anything).Return(nil)
	repo.On("Delete", mock.Anything, "job-1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/jobs/job-1/retry", nil)
	req.SetPathValue("id", "job-1")
	rr := httptest.NewRecorder()
	h.Retry(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"document_id":"doc-1"`)
	assert.Contains(t, rr.Body.String(), `"status":"requeued"`)
}

func TestHandlerRetry_NotFound(t *testing.T) {
	repo := new(MockRepo)
	h := job.NewHandler(job.NewService(repo, new(MockPublisher)))

	repo.On("Get", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/jobs/missing/retry", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()
	h.Retry(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_FOUND")
}
