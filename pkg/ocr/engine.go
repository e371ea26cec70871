package ocr

import (
	"context"
	"image"
)

// MinWordConfidence is the word-level confidence cutoff (0-100 scale).
// Words at or below this are dropped from the recognized text.
const MinWordConfidence = 50.0

// Engine recognizes text from a single page image.
type Engine interface {
	// RecognizeImage returns the recognized text of the image, filtered to
	// confident words, lines joined by newlines.
	RecognizeImage(ctx context.Context, img image.Image) (string, error)

	// Close releases engine resources.
	Close() error
}
