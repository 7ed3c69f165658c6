package worker

import (
	"context"
	"encoding/json"
)

// Chunk is the unit of embedding and retrieval: a bounded window of a source
// document plus its vector. Immutable once stored; re-ingesting a document
// replaces all of its chunks.
type Chunk struct {
	Content    string
	Vector     []float32
	DocumentID string
	FileName   string
	OwnerID    string
	ChunkIndex int
}

// IngestTask is the payload published to the ingest topic when a document is
// uploaded or re-ingested.
type IngestTask struct {
	DocumentID    string `json:"document_id"`
	Path          string `json:"path"`
	FileName      string `json:"file_name"`
	OwnerID       string `json:"owner_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (t IngestTask) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	StoreChunk(ctx context.Context, chunk Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
}

type DocumentUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateChunkCount(ctx context.Context, id string, count int) error
}

type FailedJobRecorder interface {
	Record(ctx context.Context, documentID, handler string, payload json.RawMessage, reason string) error
}
