package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	text, textErr := pdfTextLayer(path)

	if textErr == nil && meaningfulChars(text) >= e.opts.MinMeaningfulChars {
		return text, nil
	}

	if !e.opts.OCREnabled || e.ocrEngine == nil {
		if textErr != nil {
			return "", fmt.Errorf("extract pdf text: %w", textErr)
		}
		return text, nil
	}

	if !e.fileWithinOCRLimit(path) {
		if textErr != nil {
			return "", fmt.Errorf("extract pdf text: %w", textErr)
		}
		log.Printf("[INFO] PDF %s exceeds the OCR size ceiling, keeping text layer", path)
		return text, nil
	}

	if textErr != nil {
		log.Printf("[WARN] PDF text layer failed for %s: %v, trying OCR", path, textErr)
	} else {
		log.Printf("[INFO] PDF %s has a thin text layer (%d chars), trying OCR", path, meaningfulChars(text))
	}

	ocrText, ocrErr := e.ocrPDF(ctx, path)
	if ocrErr != nil {
		// Keep whatever the text layer produced rather than dropping it.
		if textErr == nil && text != "" {
			return text, nil
		}
		return "", fmt.Errorf("pdf ocr: %w", ocrErr)
	}
	return ocrText, nil
}

// fileWithinOCRLimit reports whether the file is small enough to rasterize.
// Unreadable files are treated as over the limit.
func (e *Extractor) fileWithinOCRLimit(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() <= e.opts.OCRMaxFileBytes
}

func pdfTextLayer(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ocrPage struct {
	number int
	text   string
}

// ocrPDF rasterizes every page and recognizes them with bounded
// concurrency. Individual page failures are skipped; the whole pass fails
// only when no page succeeds.
func (e *Extractor) ocrPDF(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf for rasterization: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var (
		mu    sync.Mutex
		pages []ocrPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.OCRMaxConcurrency)

	for i := 0; i < numPages; i++ {
		pageNum := i
		// Rasterization shares the fitz document handle, so render on the
		// dispatching goroutine and only recognize concurrently.
		img, renderErr := doc.ImageDPI(pageNum, e.opts.OCRDPI)
		if renderErr != nil {
			log.Printf("[WARN] OCR: render page %d of %s failed: %v", pageNum+1, path, renderErr)
			continue
		}

		g.Go(func() error {
			pageCtx, cancel := context.WithTimeout(gctx, e.opts.OCRPageTimeout)
			defer cancel()

			text, err := e.ocrEngine.RecognizeImage(pageCtx, img)
			if err != nil {
				log.Printf("[WARN] OCR: page %d of %s failed: %v", pageNum+1, path, err)
				return nil // page-level failures are tolerated
			}
			if strings.TrimSpace(text) == "" {
				return nil
			}

			mu.Lock()
			pages = append(pages, ocrPage{number: pageNum + 1, text: text})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("ocr produced no text for any page")
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].number < pages[j].number })

	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(fmt.Sprintf("--- Page %d (OCR) ---\n", p.number))
		sb.WriteString(p.text)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
