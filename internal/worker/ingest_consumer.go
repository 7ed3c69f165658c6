package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
	"github.com/asefahmed500/Cally-IO-sub000/internal/text"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// extractableExts are the file types with a text-extraction path. Anything
// else is rejected at upload time; seeing one here means the task payload was
// forged or stale, so it is dropped rather than retried.
var extractableExts = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true,
}

// IngestConsumer turns an uploaded document into stored chunks: read, split,
// embed in one batch, store, then flip the document status. Transient
// failures return an error so NSQ redelivers; permanent ones mark the
// document failed and record a job for manual retry.
type IngestConsumer struct {
	embedder Embedder
	store    VectorStore
	updater  DocumentUpdater
	jobs     FailedJobRecorder

	chunkSize    int
	chunkOverlap int
}

func NewIngestConsumer(e Embedder, s VectorStore, u DocumentUpdater, j FailedJobRecorder, chunkSize, chunkOverlap int) *IngestConsumer {
	return &IngestConsumer{
		embedder:     e,
		store:        s,
		updater:      u,
		jobs:         j,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

func (c *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task IngestTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison pill: invalid JSON will never parse, don't retry.
		slog.Error("poison pill: invalid ingest task", "error", err)
		return nil
	}

	correlationID := task.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if task.DocumentID == "" || task.Path == "" || task.OwnerID == "" {
		slog.ErrorContext(ctx, "ingest task missing required fields, dropping",
			"document_id", task.DocumentID, "path", task.Path, "owner_id", task.OwnerID)
		return nil
	}

	slog.InfoContext(ctx, "ingesting document", "document_id", task.DocumentID, "file_name", task.FileName)

	if err := c.ingest(ctx, task); err != nil {
		slog.ErrorContext(ctx, "ingestion failed", "error", err, "document_id", task.DocumentID)

		if statusErr := c.updater.UpdateStatus(ctx, task.DocumentID, StatusFailed); statusErr != nil {
			slog.WarnContext(ctx, "failed to mark document as failed", "error", statusErr)
		}
		if jobErr := c.jobs.Record(ctx, task.DocumentID, "ingest-consumer", json.RawMessage(m.Body), err.Error()); jobErr != nil {
			slog.ErrorContext(ctx, "failed to record failed job", "error", jobErr)
		}
		// The failed-job record owns the retry now; returning nil stops NSQ
		// from redelivering on top of it.
		return nil
	}

	return nil
}

func (c *IngestConsumer) ingest(ctx context.Context, task IngestTask) error {
	ext := strings.ToLower(filepath.Ext(task.Path))
	if !extractableExts[ext] {
		return fmt.Errorf("no text-extraction path for %q files", ext)
	}

	raw, err := os.ReadFile(filepath.Clean(task.Path))
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	chunks, err := text.Split(string(raw), c.chunkSize, c.chunkOverlap)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}

	// Re-ingest idempotency: drop whatever a previous run stored.
	if err := c.store.DeleteChunksByDocumentID(ctx, task.DocumentID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	if len(chunks) == 0 {
		slog.WarnContext(ctx, "document produced no chunks", "document_id", task.DocumentID)
		if err := c.updater.UpdateChunkCount(ctx, task.DocumentID, 0); err != nil {
			slog.WarnContext(ctx, "failed to update chunk count", "error", err)
		}
		return c.updater.UpdateStatus(ctx, task.DocumentID, StatusCompleted)
	}

	embedCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	vectors, err := c.embedder.EmbedMany(embedCtx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, content := range chunks {
		chunk := Chunk{
			Content:    content,
			Vector:     vectors[i],
			DocumentID: task.DocumentID,
			FileName:   task.FileName,
			OwnerID:    task.OwnerID,
			ChunkIndex: i,
		}
		if err := c.store.StoreChunk(embedCtx, chunk); err != nil {
			return fmt.Errorf("store chunk %d: %w", i, err)
		}
	}

	if err := c.updater.UpdateChunkCount(ctx, task.DocumentID, len(chunks)); err != nil {
		slog.WarnContext(ctx, "failed to update chunk count", "error", err)
	}
	if err := c.updater.UpdateStatus(ctx, task.DocumentID, StatusCompleted); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	slog.InfoContext(ctx, "document ingested", "document_id", task.DocumentID, "chunks", len(chunks))
	return nil
}
