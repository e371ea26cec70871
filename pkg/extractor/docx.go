package extractor

import (
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

func (e *Extractor) extractDocx(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}

	for _, tbl := range doc.Tables() {
		for _, row := range tbl.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var cellText strings.Builder
				for _, para := range cell.Paragraphs() {
					for _, run := range para.Runs() {
						cellText.WriteString(run.Text())
					}
				}
				cells = append(cells, cellText.String())
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}
