package extractor

import (
	"fmt"
	"os"
)

func (e *Extractor) extractTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}
