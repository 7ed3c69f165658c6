package text

import (
	"errors"
	"strings"
)

// ErrInvalidChunkConfig is returned when the overlap is not smaller than the
// chunk size. Advancing by size-overlap would stall or walk backwards.
var ErrInvalidChunkConfig = errors.New("chunk overlap must be smaller than chunk size")

// Split cuts text into fixed-size windows of at most size runes, each sharing
// overlap runes with its predecessor. The final window may be shorter. Empty
// input yields no chunks. Sizes are in runes so multi-byte text never splits
// mid-codepoint.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidChunkConfig
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}, nil
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// Reassemble is the inverse of Split: it concatenates chunks dropping the
// leading overlap of every chunk after the first.
func Reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		runes := []rune(c)
		if len(runes) > overlap {
			b.WriteString(string(runes[overlap:]))
		}
	}
	return b.String()
}
