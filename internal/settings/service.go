package settings

import (
	"context"
	"fmt"
)

// Settings is the singleton row of tenant-wide tuning knobs. The similarity
// threshold and top-K govern retrieval; the models and key govern the Gemini
// adapters.
type Settings struct {
	ID                  int     `json:"-"`
	GeminiAPIKey        string  `json:"gemini_api_key"`
	ChatModel           string  `json:"chat_model"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	TopK                int     `json:"top_k"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, set *Settings) error {
	if set.SimilarityThreshold < -1 || set.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [-1, 1]")
	}
	if set.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	return s.repo.Update(ctx, set)
}
