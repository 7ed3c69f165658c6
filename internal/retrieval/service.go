package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
	"github.com/asefahmed500/Cally-IO-sub000/internal/rank"
	"github.com/asefahmed500/Cally-IO-sub000/internal/settings"
)

// StoredChunk is a candidate fetched from the vector store: chunk text plus
// its embedding and owning-document metadata.
type StoredChunk struct {
	DocumentID string
	FileName   string
	OwnerID    string
	ChunkIndex int
	Text       string
	Vector     []float32
}

// Source is a selected chunk as exposed to clients for citation display.
// Embeddings never leave the service.
type Source struct {
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Answer is the per-request result: the cited sources up front, then a stream
// of answer fragments. Stream and Errs are closed when generation finishes.
type Answer struct {
	Sources []Source
	Stream  <-chan string
	Errs    <-chan error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type CandidateStore interface {
	FetchCandidates(ctx context.Context, ownerID string) ([]StoredChunk, error)
}

type Generator interface {
	Stream(ctx context.Context, prompt string) (<-chan string, <-chan error)
}

type SettingsService interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// Defaults are the config-level retrieval parameters, used when the settings
// row cannot be read.
type Defaults struct {
	Threshold float64
	TopK      int
}

type Service struct {
	embedder  Embedder
	store     CandidateStore
	generator Generator
	settings  SettingsService
	defaults  Defaults
	logger    *QueryLogger
}

func NewService(e Embedder, st CandidateStore, g Generator, set SettingsService, d Defaults, l *QueryLogger) *Service {
	return &Service{embedder: e, store: st, generator: g, settings: set, defaults: d, logger: l}
}

// Ask answers a question against the owner's knowledge base. Embedding and
// store failures degrade to a no-context answer instead of failing the
// request; only the generation stream itself can surface an error to the
// caller. Canceling ctx aborts the in-flight generation.
func (s *Service) Ask(ctx context.Context, question, ownerID string) (*Answer, error) {
	start := time.Now()

	threshold, topK := s.params(ctx)
	sources := s.retrieve(ctx, question, ownerID, threshold, topK)

	prompt := BuildPrompt(question, BuildContext(sources))
	stream, errs := s.generator.Stream(ctx, prompt)

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Question:      question,
			OwnerID:       ownerID,
			NumSources:    len(sources),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	return &Answer{Sources: sources, Stream: stream, Errs: errs}, nil
}

// Search runs retrieval only, without generation. Used by the chat history
// sidebar and for debugging relevance.
func (s *Service) Search(ctx context.Context, question, ownerID string) []Source {
	threshold, topK := s.params(ctx)
	return s.retrieve(ctx, question, ownerID, threshold, topK)
}

func (s *Service) params(ctx context.Context) (float64, int) {
	threshold := s.defaults.Threshold
	topK := s.defaults.TopK

	if s.settings != nil {
		if cfg, err := s.settings.Get(ctx); err == nil && cfg != nil {
			threshold = cfg.SimilarityThreshold
			if cfg.TopK > 0 {
				topK = cfg.TopK
			}
		}
	}
	return threshold, topK
}

func (s *Service) retrieve(ctx context.Context, question, ownerID string, threshold float64, topK int) []Source {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		slog.ErrorContext(ctx, "query embedding failed, answering without context", "error", err, "owner_id", ownerID)
		return nil
	}

	chunks, err := s.store.FetchCandidates(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "candidate fetch failed, answering without context", "error", err, "owner_id", ownerID)
		return nil
	}

	candidates := make([]rank.Candidate[StoredChunk], 0, len(chunks))
	for _, c := range chunks {
		candidates = append(candidates, rank.Candidate[StoredChunk]{Vector: c.Vector, Payload: c})
	}

	matches, err := rank.TopK(vec, candidates, topK, threshold)
	if err != nil {
		slog.ErrorContext(ctx, "ranking failed", "error", err, "owner_id", ownerID)
		return nil
	}

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			DocumentID: m.Payload.DocumentID,
			FileName:   m.Payload.FileName,
			ChunkIndex: m.Payload.ChunkIndex,
			Text:       m.Payload.Text,
			Score:      m.Score,
		})
	}
	return sources
}
