package ingest

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/daniellegy/softia/internal/store"
)

const (
	// NoLegibleTextSentinel is stored when OCR ran but found nothing
	// readable. It is never an empty string, so downstream code can rely
	// on every user file carrying some text.
	NoLegibleTextSentinel = "[sin texto legible en la imagen]"

	ocrErrorPrefix = "[error de OCR: "
)

// recognizeImage OCRs the image and absorbs every failure mode into
// sentinel text. Image ingestion must always produce an artifact.
func (in *Ingester) recognizeImage(data []byte) store.FileContent {
	text, err := in.ocr.Recognize(data)
	if err != nil {
		return store.FileContent{
			Kind:     store.KindImage,
			Text:     fmt.Sprintf("%s%v]", ocrErrorPrefix, err),
			Degraded: true,
		}
	}
	if strings.TrimSpace(text) == "" {
		return store.FileContent{
			Kind:     store.KindImage,
			Text:     NoLegibleTextSentinel,
			Degraded: true,
		}
	}
	return store.FileContent{Kind: store.KindImage, Text: text}
}

// TesseractRecognizer runs OCR through a local tesseract installation,
// configured for one natural language.
type TesseractRecognizer struct {
	language string
}

func NewTesseractRecognizer(language string) *TesseractRecognizer {
	return &TesseractRecognizer{language: language}
}

func (r *TesseractRecognizer) Recognize(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("set OCR language %s: %w", r.language, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image for OCR: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("run OCR: %w", err)
	}
	return text, nil
}
