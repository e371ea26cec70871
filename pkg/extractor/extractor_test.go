package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTxt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	content := "hello document\nsecond line"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	e := New(DefaultOptions(), nil)
	got, err := e.Extract(context.Background(), path, "txt")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != content {
		t.Errorf("Extract() = %q, want %q", got, content)
	}
}

func TestExtractMarkdownAsText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("# Title"), 0644); err != nil {
		t.Fatal(err)
	}

	e := New(DefaultOptions(), nil)
	got, err := e.Extract(context.Background(), path, "md")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "# Title" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(path, []byte("  \n\t \n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := New(DefaultOptions(), nil)
	_, err := e.Extract(context.Background(), path, "txt")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("Extract() error = %v, want ErrEmptyContent", err)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	e := New(DefaultOptions(), nil)
	_, err := e.Extract(context.Background(), "whatever.bin", "bin")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFileWithinOCRLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(path, make([]byte, 1024), 0644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.OCRMaxFileBytes = 2048
	if !New(opts, nil).fileWithinOCRLimit(path) {
		t.Error("1KB file under a 2KB ceiling should be within the limit")
	}

	opts.OCRMaxFileBytes = 512
	if New(opts, nil).fileWithinOCRLimit(path) {
		t.Error("1KB file over a 512B ceiling should be rejected")
	}

	if New(DefaultOptions(), nil).fileWithinOCRLimit(filepath.Join(dir, "missing.pdf")) {
		t.Error("unreadable file should be rejected")
	}
}

func TestMeaningfulChars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n\t  \r\n", 0},
		{"mixed", "ab c\nd", 4},
		{"unicode", "你好 世界", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meaningfulChars(tt.text); got != tt.want {
				t.Errorf("meaningfulChars(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
