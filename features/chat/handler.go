package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func ownerID(r *http.Request) string {
	return r.Header.Get("X-Owner-ID")
}

// Ask streams a grounded answer over SSE. Event order is fixed: one
// `sources` event, then zero or more `message` fragments, then `done`. On a
// generation failure the client gets a single generic `error` event; the
// cause stays in the server log.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "X-Owner-ID header is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Streaming not supported", http.StatusInternalServerError)
		return
	}

	answer, err := h.service.Ask(r.Context(), owner, body.Message)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("chat ask failed", "error", err, "owner_id", owner)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, "sources", answer.Sources)
	flusher.Flush()

	var full strings.Builder
	stream, errs := answer.Stream, answer.Errs
	for stream != nil || errs != nil {
		select {
		case fragment, ok := <-stream:
			if !ok {
				stream = nil
				continue
			}
			full.WriteString(fragment)
			writeEvent(w, "message", fragment)
			flusher.Flush()
		case genErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if genErr != nil {
				slog.Error("generation failed", "error", genErr, "owner_id", owner)
				writeEvent(w, "error", "Something went wrong while generating the answer.")
				flusher.Flush()
				return
			}
		case <-r.Context().Done():
			return
		}
	}

	// Persist after the client has the full answer; disconnects before this
	// point lose the assistant turn only.
	h.service.RecordAnswer(context.WithoutCancel(r.Context()), owner, full.String(), answer.Sources)
	writeEvent(w, "done", "")
	flusher.Flush()
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "X-Owner-ID header is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	msgs, err := h.service.History(r.Context(), owner, limit)
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": msgs,
		"meta": map[string]int{"count": len(msgs)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Search returns ranked sources without generating an answer.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "X-Owner-ID header is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	sources, err := h.service.Search(r.Context(), owner, body.Query)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if sources == nil {
		sources = []retrieval.Source{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": sources,
		"meta": map[string]int{"count": len(sources)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeEvent encodes data as JSON so fragments with newlines survive SSE
// framing.
func writeEvent(w http.ResponseWriter, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal sse event", "error", err, "event", event)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
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
