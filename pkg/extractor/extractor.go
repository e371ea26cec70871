package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doc-qa-be/pkg/ocr"
)

// ErrEmptyContent means the file was read fine but yielded no text worth
// indexing. Not retriable.
var ErrEmptyContent = errors.New("no extractable text content")

// ErrUnsupportedFormat means the declared file type has no extraction
// strategy. Not retriable either.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Options controls extraction behavior, mainly the PDF OCR fallback.
type Options struct {
	OCREnabled         bool
	OCRDPI             float64
	OCRMaxConcurrency  int
	OCRPageTimeout     time.Duration
	OCRMaxFileBytes    int64 // files over this keep their text layer as-is
	MinMeaningfulChars int   // text-layer yield below this triggers OCR
}

func DefaultOptions() Options {
	return Options{
		OCREnabled:         true,
		OCRDPI:             200,
		OCRMaxConcurrency:  2,
		OCRPageTimeout:     60 * time.Second,
		OCRMaxFileBytes:    50 << 20,
		MinMeaningfulChars: 50,
	}
}

// Extractor turns an uploaded file into plain text, dispatching on the
// file type recorded at upload.
type Extractor struct {
	opts      Options
	ocrEngine ocr.Engine
}

// New creates an Extractor. ocrEngine may be nil, which disables the PDF
// OCR fallback regardless of options.
func New(opts Options, ocrEngine ocr.Engine) *Extractor {
	if opts.OCRDPI <= 0 {
		opts.OCRDPI = 200
	}
	if opts.OCRMaxConcurrency <= 0 {
		opts.OCRMaxConcurrency = 2
	}
	if opts.OCRPageTimeout <= 0 {
		opts.OCRPageTimeout = 60 * time.Second
	}
	if opts.OCRMaxFileBytes <= 0 {
		opts.OCRMaxFileBytes = 50 << 20
	}
	if opts.MinMeaningfulChars <= 0 {
		opts.MinMeaningfulChars = 50
	}
	return &Extractor{
		opts:      opts,
		ocrEngine: ocrEngine,
	}
}

// Extract reads the file at path and returns its text content. A file that
// parses but contains no text at all fails with ErrEmptyContent.
func (e *Extractor) Extract(ctx context.Context, path string, fileType string) (string, error) {
	var text string
	var err error

	switch strings.ToLower(fileType) {
	case "pdf":
		text, err = e.extractPDF(ctx, path)
	case "docx", "doc":
		text, err = e.extractDocx(path)
	case "xlsx", "xls":
		text, err = e.extractXlsx(path)
	case "txt", "md":
		text, err = e.extractTxt(path)
	default:
		return "", fmt.Errorf("%s: %w", fileType, ErrUnsupportedFormat)
	}
	if err != nil {
		return "", err
	}

	if meaningfulChars(text) == 0 {
		return "", fmt.Errorf("%s file %s: %w", fileType, path, ErrEmptyContent)
	}
	return text, nil
}

// meaningfulChars counts non-whitespace runes.
func meaningfulChars(text string) int {
	count := 0
	for _, r := range text {
		if !strings.ContainsRune(" \t\n\r\f\v", r) {
			count++
		}
	}
	return count
}
