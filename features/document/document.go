package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asefahmed500/Cally-IO-sub000/internal/config"
	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
	"github.com/asefahmed500/Cally-IO-sub000/internal/worker"
)

var (
	ErrDuplicate       = errors.New("duplicate document")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Document is a knowledge-base upload. Status tracks the background
// ingestion: processing -> completed | failed. Chunks live in the vector
// store; the row owns their lifecycle.
type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"-"`
	ContentHash string    `json:"-"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	ExistsByHash(ctx context.Context, ownerID, hash string) (bool, error)
	Get(ctx context.Context, ownerID, id string) (*Document, error)
	List(ctx context.Context, ownerID string) ([]Document, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateChunkCount(ctx context.Context, id string, count int) error
	SoftDelete(ctx context.Context, ownerID, id string) error
	Count(ctx context.Context) (int, error)
}

type ChunkStore interface {
	GetChunks(ctx context.Context, documentID string, limit, offset int) ([]worker.Chunk, error)
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo       Repository
	pub        EventPublisher
	chunkStore ChunkStore
}

func NewService(repo Repository, pub EventPublisher, chunkStore ChunkStore) *Service {
	return &Service{repo: repo, pub: pub, chunkStore: chunkStore}
}

// Ingest registers an uploaded file and queues it for chunking and
// embedding. The caller gets the row back immediately; completion is tracked
// on the status field, not awaited.
func (s *Service) Ingest(ctx context.Context, ownerID, path, hash, fileName string) (*Document, error) {
	exists, err := s.repo.ExistsByHash(ctx, ownerID, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicate
	}

	doc := &Document{
		OwnerID:     ownerID,
		FileName:    fileName,
		FilePath:    path,
		ContentHash: hash,
		Status:      worker.StatusProcessing,
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.publishIngestTask(ctx, doc); err != nil {
		// The row exists but is unqueued; fail loudly so the caller knows
		// ingestion did not start.
		return nil, fmt.Errorf("queue ingest task: %w", err)
	}

	return doc, nil
}

// Reingest re-queues an existing document, e.g. after a failed run. Old
// chunks are replaced by the worker, not here.
func (s *Service) Reingest(ctx context.Context, ownerID, id string) error {
	doc, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, worker.StatusProcessing); err != nil {
		return err
	}

	return s.publishIngestTask(ctx, doc)
}

type Detail struct {
	Document
	Chunks      []worker.Chunk `json:"chunks,omitempty"`
	TotalChunks int            `json:"total_chunks"`
}

func (s *Service) Get(ctx context.Context, ownerID, id string, limit, offset int, includeChunks bool) (*Detail, error) {
	doc, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Document: *doc, TotalChunks: doc.ChunkCount}
	if includeChunks {
		chunks, err := s.chunkStore.GetChunks(ctx, id, limit, offset)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch chunks", "error", err, "document_id", id)
			chunks = []worker.Chunk{}
		}
		detail.Chunks = chunks
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	return s.repo.List(ctx, ownerID)
}

// Delete removes the document's chunks from the vector store first, then
// soft-deletes the row. A failed chunk delete leaves the row intact so the
// delete can be retried.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.chunkStore.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return s.repo.SoftDelete(ctx, ownerID, id)
}

func (s *Service) publishIngestTask(ctx context.Context, doc *Document) error {
	task := worker.IngestTask{
		DocumentID:    doc.ID,
		Path:          doc.FilePath,
		FileName:      doc.FileName,
		OwnerID:       doc.OwnerID,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	payload, err := task.Marshal()
	if err != nil {
		return err
	}

	if err := s.pub.Publish(config.TopicIngestTask, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish ingest task", "error", err, "document_id", doc.ID)
		return err
	}
	slog.InfoContext(ctx, "published ingest task", "document_id", doc.ID, "file_name", doc.FileName)
	return nil
}
