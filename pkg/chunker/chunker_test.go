package chunker

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "empty text",
			text:       "",
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 0,
		},
		{
			name:       "short text single chunk",
			text:       "hello world",
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 1,
		},
		{
			name:       "exact fit single chunk",
			text:       strings.Repeat("a", 1000),
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 1,
		},
		{
			name:       "two windows",
			text:       strings.Repeat("a", 1001),
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 2,
		},
		{
			name:       "zero overlap",
			text:       strings.Repeat("a", 300),
			chunkSize:  100,
			overlap:    0,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.chunkSize, tt.overlap)
			if len(got) != tt.wantChunks {
				t.Errorf("Split() returned %d chunks, want %d", len(got), tt.wantChunks)
			}
			for i, c := range got {
				if c == "" {
					t.Errorf("chunk %d is empty", i)
				}
			}
		})
	}
}

func TestSplitOverlapPreserved(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := Split(text, 1000, 200)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// With no whitespace the window is strict: step is 800, so every
	// chunk after the first starts 800 runes in and repeats the last 200.
	if len([]rune(chunks[0])) != 1000 {
		t.Errorf("first chunk length = %d, want 1000", len([]rune(chunks[0])))
	}
	joined := strings.Join(chunks, "")
	if len(joined) <= len(text) {
		t.Errorf("overlap missing: joined length %d <= original %d", len(joined), len(text))
	}
}

func TestSplitBreaksAtWhitespace(t *testing.T) {
	// A space placed inside the lookback region of the first window.
	text := strings.Repeat("a", 95) + " " + strings.Repeat("b", 100)
	chunks := Split(text, 100, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], " ") {
		t.Errorf("first chunk should end at the whitespace break, got %q", chunks[0][len(chunks[0])-10:])
	}
}

func TestSplitOverlapGreaterThanSize(t *testing.T) {
	text := strings.Repeat("a", 500)
	chunks := Split(text, 100, 100)

	// Window must still advance, otherwise this would loop forever.
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d runes, want at least %d", total, len(text))
	}
}
