package rank

import (
	"errors"
	"log/slog"
	"math"
	"sort"
)

var (
	// ErrDimensionMismatch means the two vectors cannot be compared at all.
	// Scoring them as 0 would silently rank them as "unrelated" instead of
	// surfacing the bug.
	ErrDimensionMismatch = errors.New("vector dimensions do not match")

	ErrInvalidLimit = errors.New("top-k limit must be positive")
)

// Candidate pairs an embedding vector with the value it scores for.
type Candidate[T any] struct {
	Vector  []float32
	Payload T
}

// Match is a candidate that passed the relevance threshold.
type Match[T any] struct {
	Payload T
	Score   float64
}

// CosineSimilarity returns dot(a,b)/(|a||b|). A zero-magnitude vector yields
// 0 rather than dividing by zero; that is a degenerate-case policy, not a
// meaningful similarity.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TopK scores every candidate against query, keeps those strictly above
// threshold, and returns at most k of them in descending score order. Ties
// preserve input order. Candidates whose vector length differs from the query
// are skipped with a warning; an empty candidate list returns an empty result.
// The threshold filter runs before truncation so a low-relevance candidate can
// never occupy a top-k slot.
func TopK[T any](query []float32, candidates []Candidate[T], k int, threshold float64) ([]Match[T], error) {
	if k < 1 {
		return nil, ErrInvalidLimit
	}

	matches := make([]Match[T], 0, len(candidates))
	for i, c := range candidates {
		score, err := CosineSimilarity(query, c.Vector)
		if err != nil {
			slog.Warn("skipping candidate with mismatched vector dimensions",
				"index", i, "query_dim", len(query), "candidate_dim", len(c.Vector))
			continue
		}
		if score > threshold {
			matches = append(matches, Match[T]{Payload: c.Payload, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
