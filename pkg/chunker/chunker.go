package chunker

import "unicode"

const (
	// DefaultChunkSize is the window size in runes.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many runes consecutive chunks share.
	DefaultOverlap = 200
)

// Split cuts text into overlapping chunks of approximately chunkSize runes.
// The window advances by chunkSize-overlap so consecutive chunks share
// context at the boundary. When the window does not end at the text end,
// the cut point backs up to the nearest whitespace within the last 10% of
// the window, so words are not split mid-token unless unavoidable.
func Split(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // overlap >= chunkSize would never advance
	}

	var chunks []string
	for start := 0; start < totalLen; start += step {
		end := start + chunkSize
		if end >= totalLen {
			end = totalLen
		} else {
			end = breakAtWhitespace(runes, start, end, chunkSize)
		}

		chunk := string(runes[start:end])
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}

		if end == totalLen {
			break
		}
	}

	return chunks
}

// breakAtWhitespace looks backwards from end for a whitespace rune, at most
// 10% of the window deep. Returns the original end when none is found.
func breakAtWhitespace(runes []rune, start, end, chunkSize int) int {
	lookback := chunkSize / 10
	limit := end - lookback
	if limit < start+1 {
		limit = start + 1
	}
	for i := end - 1; i >= limit; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
