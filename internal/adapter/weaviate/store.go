package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
	"github.com/asefahmed500/Cally-IO-sub000/internal/vector"
	"github.com/asefahmed500/Cally-IO-sub000/internal/worker"
)

// Store persists chunks in Weaviate with externally supplied vectors. Ranking
// happens in the retrieval service, not here: FetchCandidates returns every
// chunk in the owner's scope and the ranker does the scan.
type Store struct {
	client         *weaviate.Client
	candidateLimit int
}

func NewStore(client *weaviate.Client, candidateLimit int) *Store {
	return &Store{client: client, candidateLimit: candidateLimit}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

func (s *Store) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassName).
		WithProperties(map[string]interface{}{
			"content":    chunk.Content,
			"documentId": chunk.DocumentID,
			"fileName":   chunk.FileName,
			"ownerId":    chunk.OwnerID,
			"chunkIndex": chunk.ChunkIndex,
		}).
		WithVector(chunk.Vector).
		Do(ctx)
	return err
}

// DeleteChunksByDocumentID removes every chunk of a document. Deleting a
// document with no chunks is a no-op, so deletes are idempotent.
func (s *Store) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueString(documentID)).
		Do(ctx)
	return err
}

// FetchCandidates returns all chunks owned by ownerID, vectors included,
// capped at the configured candidate limit.
func (s *Store) FetchCandidates(ctx context.Context, ownerID string) ([]retrieval.StoredChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "fileName"},
		{Name: "ownerId"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "vector"}}},
	}

	where := filters.Where().
		WithPath([]string{"ownerId"}).
		WithOperator(filters.Equal).
		WithValueString(ownerID)

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithWhere(where).
		WithLimit(s.candidateLimit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("fetch candidates: graphql error: %v", res.Errors)
	}

	var chunks []retrieval.StoredChunk
	for _, props := range objects(res.Data) {
		chunk := retrieval.StoredChunk{}
		if content, ok := props["content"].(string); ok {
			chunk.Text = content
		}
		if id, ok := props["documentId"].(string); ok {
			chunk.DocumentID = id
		}
		if name, ok := props["fileName"].(string); ok {
			chunk.FileName = name
		}
		if owner, ok := props["ownerId"].(string); ok {
			chunk.OwnerID = owner
		}
		if idx, ok := props["chunkIndex"].(float64); ok {
			chunk.ChunkIndex = int(idx)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			chunk.Vector = toVector(additional["vector"])
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// GetChunks returns a document's chunks without vectors, for detail views.
func (s *Store) GetChunks(ctx context.Context, documentID string, limit, offset int) ([]worker.Chunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "fileName"},
		{Name: "chunkIndex"},
	}

	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithWhere(where).
		WithLimit(limit).
		WithOffset(offset).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("get chunks: graphql error: %v", res.Errors)
	}

	var chunks []worker.Chunk
	for _, props := range objects(res.Data) {
		chunk := worker.Chunk{}
		if content, ok := props["content"].(string); ok {
			chunk.Content = content
		}
		if id, ok := props["documentId"].(string); ok {
			chunk.DocumentID = id
		}
		if name, ok := props["fileName"].(string); ok {
			chunk.FileName = name
		}
		if idx, ok := props["chunkIndex"].(float64); ok {
			chunk.ChunkIndex = int(idx)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *Store) CountChunks(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("count chunks: graphql error: %v", res.Errors)
	}

	if agg, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if classes, ok := agg[vector.ClassName].([]interface{}); ok && len(classes) > 0 {
			if entry, ok := classes[0].(map[string]interface{}); ok {
				if meta, ok := entry["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, fmt.Errorf("count chunks: unexpected aggregate shape")
}

// objects unwraps the Get response into property maps.
func objects(data map[string]models.JSONObject) []map[string]interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := get[vector.ClassName].([]interface{})
	if !ok {
		return nil
	}

	var out []map[string]interface{}
	for _, o := range raw {
		if props, ok := o.(map[string]interface{}); ok {
			out = append(out, props)
		}
	}
	return out
}

// toVector converts the GraphQL _additional vector (JSON numbers) back to the
// float32 slice the ranker expects.
func toVector(raw interface{}) []float32 {
	values, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	vec := make([]float32, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok {
			vec = append(vec, float32(f))
		}
	}
	return vec
}
