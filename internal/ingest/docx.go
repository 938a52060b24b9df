package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX concatenates the text of every paragraph, one per line, in
// document order.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
