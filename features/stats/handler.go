package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type VectorStore interface {
	CountChunks(ctx context.Context) (int, error)
}

type Handler struct {
	documentRepo Counter
	leadRepo     Counter
	messageRepo  Counter
	jobRepo      Counter
	vectorStore  VectorStore
}

func NewHandler(documents, leads, messages, jobs Counter, v VectorStore) *Handler {
	return &Handler{
		documentRepo: documents,
		leadRepo:     leads,
		messageRepo:  messages,
		jobRepo:      jobs,
		vectorStore:  v,
	}
}

type StatsResponse struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Leads      int `json:"leads"`
	Messages   int `json:"messages"`
	FailedJobs int `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	docCount, err := h.documentRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count documents", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count documents", http.StatusInternalServerError)
		return
	}

	leadCount, err := h.leadRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count leads", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count leads", http.StatusInternalServerError)
		return
	}

	msgCount, err := h.messageRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count messages", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count messages", http.StatusInternalServerError)
		return
	}

	jobCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	chunkCount, err := h.vectorStore.CountChunks(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count chunks", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count chunks", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Documents:  docCount,
		Chunks:     chunkCount,
		Leads:      leadCount,
		Messages:   msgCount,
		FailedJobs: jobCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
