// Package ingest converts uploaded binaries (PDF, DOCX, raster images) into
// plain text suitable for the user file store.
package ingest

import (
	"errors"
	"fmt"

	"github.com/daniellegy/softia/internal/store"
)

var ErrUnsupportedType = errors.New("unsupported file type")

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

// Recognizer performs optical character recognition on a raster image.
type Recognizer interface {
	Recognize(image []byte) (string, error)
}

// Ingester routes an upload to the extractor for its declared content type.
type Ingester struct {
	ocr Recognizer
}

func NewIngester(ocr Recognizer) *Ingester {
	return &Ingester{ocr: ocr}
}

// Ingest extracts text from data according to contentType.
//
// Text-based formats (PDF, DOCX) propagate extraction failures to the
// caller. Image inputs never fail: empty OCR output and internal OCR errors
// are both absorbed into sentinel text, so the pipeline always has some
// artifact to store for an image.
func (in *Ingester) Ingest(data []byte, contentType string) (store.FileContent, error) {
	switch contentType {
	case MimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return store.FileContent{}, fmt.Errorf("pdf extraction failed: %w", err)
		}
		return store.FileContent{Kind: store.KindText, Text: text}, nil
	case MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return store.FileContent{}, fmt.Errorf("docx extraction failed: %w", err)
		}
		return store.FileContent{Kind: store.KindText, Text: text}, nil
	case MimePNG, MimeJPEG:
		return in.recognizeImage(data), nil
	default:
		return store.FileContent{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}
