package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
)

var ErrValidation = errors.New("validation error")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Assistant turns carry the sources
// that grounded the answer, serialized as they were sent to the client.
type Message struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Sources   json.RawMessage `json:"sources,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, m *Message) error
	History(ctx context.Context, ownerID string, limit int) ([]Message, error)
	Count(ctx context.Context) (int, error)
}

// Retriever is the slice of the retrieval service the chat flow needs.
type Retriever interface {
	Ask(ctx context.Context, question, ownerID string) (*retrieval.Answer, error)
	Search(ctx context.Context, question, ownerID string) []retrieval.Source
}

type Service struct {
	repo      Repository
	retriever Retriever
}

func NewService(repo Repository, retriever Retriever) *Service {
	return &Service{repo: repo, retriever: retriever}
}

// Ask records the user turn and starts a grounded answer. The caller drains
// Answer.Stream and then calls RecordAnswer with the assembled text.
func (s *Service) Ask(ctx context.Context, ownerID, question string) (*retrieval.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	msg := &Message{OwnerID: ownerID, Role: RoleUser, Content: question}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	return s.retriever.Ask(ctx, question, ownerID)
}

// RecordAnswer persists the assistant turn once streaming has finished. A
// failure here is logged but not surfaced; the client already has the answer.
func (s *Service) RecordAnswer(ctx context.Context, ownerID, content string, sources []retrieval.Source) {
	raw, err := json.Marshal(sources)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal sources", "error", err)
		raw = []byte("[]")
	}

	msg := &Message{OwnerID: ownerID, Role: RoleAssistant, Content: content, Sources: raw}
	if err := s.repo.Save(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to save assistant message", "error", err, "owner_id", ownerID)
	}
}

func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.History(ctx, ownerID, limit)
}

// Search exposes retrieval without generation, for relevance debugging.
func (s *Service) Search(ctx context.Context, ownerID, question string) ([]retrieval.Source, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	return s.retriever.Search(ctx, question, ownerID), nil
}
