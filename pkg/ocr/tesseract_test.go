package ocr

import (
	"testing"
)

func TestTesseractEngineSatisfiesEngine(t *testing.T) {
	var e interface{} = (*TesseractEngine)(nil)
	if _, ok := e.(Engine); !ok {
		t.Fatal("TesseractEngine does not implement Engine")
	}
}
