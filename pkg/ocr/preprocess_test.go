package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocessUpscalesSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 255), G: 120, B: 30, A: 255})
		}
	}

	out := Preprocess(src)

	if out.Bounds().Dx() != minImageWidth {
		t.Errorf("width = %d, want %d", out.Bounds().Dx(), minImageWidth)
	}
	// Aspect ratio preserved: 200 * (800/400) = 400
	if out.Bounds().Dy() != 400 {
		t.Errorf("height = %d, want 400", out.Bounds().Dy())
	}
	if _, ok := out.(*image.Gray); !ok {
		t.Errorf("expected grayscale output, got %T", out)
	}
}

func TestPreprocessKeepsLargeImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 900))
	out := Preprocess(src)

	if out.Bounds().Dx() != 1200 || out.Bounds().Dy() != 900 {
		t.Errorf("bounds = %v, want 1200x900", out.Bounds())
	}
	if _, ok := out.(*image.Gray); !ok {
		t.Errorf("expected grayscale output, got %T", out)
	}
}
