package ocr

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// minImageWidth is the smallest width fed to recognition. Scanned pages
// below this tend to produce garbage words.
const minImageWidth = 800

// Preprocess converts the page to grayscale and upscales small images to
// minImageWidth, preserving aspect ratio.
func Preprocess(src image.Image) image.Image {
	bounds := src.Bounds()

	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, src, bounds.Min, xdraw.Src)

	if bounds.Dx() >= minImageWidth {
		return gray
	}

	scale := float64(minImageWidth) / float64(bounds.Dx())
	dstW := minImageWidth
	dstH := int(float64(bounds.Dy()) * scale)
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), gray, bounds, xdraw.Over, nil)
	return dst
}
