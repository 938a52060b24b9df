package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellegy/softia/internal/store"
)

// fakeRecognizer returns canned OCR output.
type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(image []byte) (string, error) {
	return f.text, f.err
}

func TestIngest_UnsupportedType(t *testing.T) {
	in := NewIngester(&fakeRecognizer{})

	_, err := in.Ingest([]byte("data"), "application/zip")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestIngest_ImageWithText(t *testing.T) {
	in := NewIngester(&fakeRecognizer{text: "texto reconocido"})

	content, err := in.Ingest([]byte("png bytes"), MimePNG)
	require.NoError(t, err)
	assert.Equal(t, store.KindImage, content.Kind)
	assert.Equal(t, "texto reconocido", content.Text)
	assert.False(t, content.Degraded)
}

func TestIngest_ImageWithNoLegibleText(t *testing.T) {
	tests := []struct {
		name string
		ocr  string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewIngester(&fakeRecognizer{text: tt.ocr})

			content, err := in.Ingest([]byte("png bytes"), MimePNG)
			require.NoError(t, err)
			assert.Equal(t, NoLegibleTextSentinel, content.Text)
			assert.NotEmpty(t, content.Text)
			assert.True(t, content.Degraded)
		})
	}
}

func TestIngest_ImageOCRFailureBecomesSentinel(t *testing.T) {
	in := NewIngester(&fakeRecognizer{err: errors.New("tesseract exploded")})

	// Image ingestion never surfaces OCR errors; they become diagnostic
	// text the caller can still store.
	content, err := in.Ingest([]byte("jpeg bytes"), MimeJPEG)
	require.NoError(t, err)
	assert.Equal(t, store.KindImage, content.Kind)
	assert.Contains(t, content.Text, "tesseract exploded")
	assert.True(t, content.Degraded)
}

func TestIngest_MalformedPDFPropagates(t *testing.T) {
	in := NewIngester(&fakeRecognizer{})

	_, err := in.Ingest([]byte("not a pdf file"), MimePDF)
	assert.Error(t, err)
}

func TestIngest_MalformedDOCXPropagates(t *testing.T) {
	in := NewIngester(&fakeRecognizer{})

	_, err := in.Ingest([]byte("not a docx archive"), MimeDOCX)
	assert.Error(t, err)
}
