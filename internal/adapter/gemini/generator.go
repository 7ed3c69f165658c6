package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Generator streams chat completions from a Gemini model.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Stream starts a generation and returns a fragment channel fed by a single
// producer goroutine. Both channels are closed when generation ends; a closed
// Stream with an empty error channel means normal completion. Canceling ctx
// aborts the upstream call.
func (g *Generator) Stream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		model := g.client.GenerativeModel(g.model)
		iter := model.GenerateContentStream(ctx, genai.Text(prompt))

		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				slog.ErrorContext(ctx, "generation stream failed", "error", err, "model", g.model)
				errs <- fmt.Errorf("generate content: %w", err)
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if text, ok := part.(genai.Text); ok {
						select {
						case out <- string(text):
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return out, errs
}

func (g *Generator) Close() error {
	return g.client.Close()
}
