package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text with a local Tesseract install via
// gosseract. A single client is reused; recognition is serialized because
// the client is not safe for concurrent use.
type TesseractEngine struct {
	mu        sync.Mutex
	client    *gosseract.Client
	languages []string
}

var _ Engine = &TesseractEngine{}

// NewTesseractEngine creates the engine. languages follow Tesseract naming
// (e.g. "eng", "chi_sim"). useGPU is accepted for config compatibility:
// Tesseract runs on CPU, so the flag only logs a note when set.
func NewTesseractEngine(languages []string, useGPU bool) (*TesseractEngine, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if useGPU {
		log.Println("[WARN] OCR_USE_GPU set, tesseract backend is CPU only, continuing on CPU")
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		// Fall back to the default language pack rather than failing init.
		log.Printf("[WARN] OCR language set %v unavailable: %v, falling back to eng", languages, err)
		client.Close()
		client = gosseract.NewClient()
		languages = []string{"eng"}
	}

	return &TesseractEngine{
		client:    client,
		languages: languages,
	}, nil
}

func (e *TesseractEngine) RecognizeImage(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prepared := Preprocess(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	return joinConfidentWords(boxes), nil
}

// Close releases the underlying tesseract client.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

// joinConfidentWords keeps words above the confidence cutoff, grouping them
// into lines by their bounding box rows.
func joinConfidentWords(boxes []gosseract.BoundingBox) string {
	var sb strings.Builder
	lastBottom := -1

	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" || box.Confidence <= MinWordConfidence {
			continue
		}

		if sb.Len() > 0 {
			// A word starting below the previous word's bottom edge opens
			// a new line.
			if box.Box.Min.Y >= lastBottom {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(word)

		if box.Box.Max.Y > lastBottom {
			lastBottom = box.Box.Max.Y
		}
	}

	return sb.String()
}
