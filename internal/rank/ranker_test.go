package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("Identical Vector", func(t *testing.T) {
		v := []float32{0.3, -1.2, 4.5, 0.01}
		got, err := CosineSimilarity(v, v)
		assert.NoError(t, err)
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("Opposite Vector", func(t *testing.T) {
		v := []float32{1, 2, 3}
		neg := []float32{-1, -2, -3}
		got, err := CosineSimilarity(v, neg)
		assert.NoError(t, err)
		assert.InDelta(t, -1.0, got, 1e-9)
	})

	t.Run("Orthogonal", func(t *testing.T) {
		got, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		assert.NoError(t, err)
		assert.InDelta(t, 0.0, got, 1e-9)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []float32{0.5, 1.5, -2.0}
		b := []float32{3.0, -0.25, 0.75}
		ab, err := CosineSimilarity(a, b)
		assert.NoError(t, err)
		ba, err := CosineSimilarity(b, a)
		assert.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("Zero Magnitude", func(t *testing.T) {
		got, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
		assert.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("Dimension Mismatch", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestTopK(t *testing.T) {
	query := []float32{1, 0}

	// Candidate at angle θ from the query scores cos(θ).
	cand := func(x, y float32, name string) Candidate[string] {
		return Candidate[string]{Vector: []float32{x, y}, Payload: name}
	}

	t.Run("Ranks Descending And Truncates", func(t *testing.T) {
		// Similarities: 0.9, 0.3, 0.6, 0.95 against k=2, threshold=0.5.
		candidates := []Candidate[string]{
			cand(0.9, 0.43589, "a"),  // ~0.9
			cand(0.3, 0.95394, "b"),  // ~0.3
			cand(0.6, 0.8, "c"),      // 0.6
			cand(0.95, 0.31225, "d"), // ~0.95
		}
		matches, err := TopK(query, candidates, 2, 0.5)
		assert.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, "d", matches[0].Payload)
		assert.Equal(t, "a", matches[1].Payload)
		assert.Greater(t, matches[0].Score, matches[1].Score)
	})

	t.Run("Threshold Filters Before Truncation", func(t *testing.T) {
		candidates := []Candidate[string]{
			cand(0.2, 0.97979, "low1"),
			cand(0.3, 0.95394, "low2"),
			cand(0.9, 0.43589, "high"),
		}
		matches, err := TopK(query, candidates, 3, 0.5)
		assert.NoError(t, err)
		assert.Len(t, matches, 1)
		assert.Equal(t, "high", matches[0].Payload)
		for _, m := range matches {
			assert.Greater(t, m.Score, 0.5)
		}
	})

	t.Run("Exact Threshold Excluded", func(t *testing.T) {
		matches, err := TopK(query, []Candidate[string]{cand(0.5, 0.86603, "edge")}, 1, 0.5)
		assert.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Empty Candidates", func(t *testing.T) {
		matches, err := TopK[string](query, nil, 5, 0.5)
		assert.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Ties Preserve Input Order", func(t *testing.T) {
		candidates := []Candidate[string]{
			cand(2, 0, "first"),
			cand(5, 0, "second"), // same direction, same similarity
		}
		matches, err := TopK(query, candidates, 2, 0.5)
		assert.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, "first", matches[0].Payload)
		assert.Equal(t, "second", matches[1].Payload)
	})

	t.Run("Mismatched Candidate Skipped Without Error", func(t *testing.T) {
		candidates := []Candidate[string]{
			cand(0.9, 0.43589, "good"),
			{Vector: []float32{1, 0, 0}, Payload: "wrong-dims"},
		}
		matches, err := TopK(query, candidates, 5, 0.5)
		assert.NoError(t, err)
		assert.Len(t, matches, 1)
		assert.Equal(t, "good", matches[0].Payload)
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		_, err := TopK[string](query, nil, 0, 0.5)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})
}
