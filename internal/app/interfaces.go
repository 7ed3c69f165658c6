package app

import (
	"context"

	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
	"github.com/asefahmed500/Cally-IO-sub000/internal/worker"
)

// VectorStore is everything the wired features need from the chunk store.
// Satisfied by the Weaviate adapter; mocked in bootstrap tests.
type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	StoreChunk(ctx context.Context, chunk worker.Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
	FetchCandidates(ctx context.Context, ownerID string) ([]retrieval.StoredChunk, error)
	GetChunks(ctx context.Context, documentID string, limit, offset int) ([]worker.Chunk, error)
	CountChunks(ctx context.Context) (int, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}
