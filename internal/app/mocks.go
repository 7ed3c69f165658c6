package app

import (
	"context"

	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
	"github.com/asefahmed500/Cally-IO-sub000/internal/worker"
)

// MockVectorStore is a configurable VectorStore used by bootstrap and wiring
// tests.
type MockVectorStore struct {
	EnsureSchemaErr error
	Chunks          []worker.Chunk
	Candidates      []retrieval.StoredChunk
}

func (m *MockVectorStore) EnsureSchema(ctx context.Context) error {
	return m.EnsureSchemaErr
}

func (m *MockVectorStore) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	m.Chunks = append(m.Chunks, chunk)
	return nil
}

func (m *MockVectorStore) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	return nil
}

func (m *MockVectorStore) FetchCandidates(ctx context.Context, ownerID string) ([]retrieval.StoredChunk, error) {
	return m.Candidates, nil
}

func (m *MockVectorStore) GetChunks(ctx context.Context, documentID string, limit, offset int) ([]worker.Chunk, error) {
	return m.Chunks, nil
}

func (m *MockVectorStore) CountChunks(ctx context.Context) (int, error) {
	return len(m.Chunks), nil
}
