package extractor

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

func (e *Extractor) extractXlsx(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Printf("[WARN] Skipping unreadable sheet %q in %s: %v", sheetName, path, err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("[Sheet: %s]\n", sheetName))
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
