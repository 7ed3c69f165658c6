package job

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/asefahmed500/Cally-IO-sub000/internal/config"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

// Retry republishes the dead-lettered payload and removes the row, returning
// the job so callers can report which document was requeued. If the run fails
// again the consumer records a fresh job.
func (s *Service) Retry(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.pub.Publish(config.TopicIngestTask, job.Payload); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return job, nil
}

// Record implements the worker's dead-letter sink.
func (s *Service) Record(ctx context.Context, documentID, handler string, payload json.RawMessage, reason string) error {
	j := &Job{
		DocumentID: documentID,
		Handler:    handler,
		Payload:    payload,
		Error:      reason,
	}
	if err := s.repo.Save(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to record dead-lettered job", "error", err, "document_id", documentID)
		return err
	}
	slog.InfoContext(ctx, "recorded dead-lettered job", "job_id", j.ID, "document_id", documentID, "reason", reason)
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
