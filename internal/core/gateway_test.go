package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellegy/softia/internal/store"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeCompletionServer answers every request with a single completion and
// records the last request body.
func fakeCompletionServer(t *testing.T, answer string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "deepseek-chat",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": answer},
					"finish_reason": "stop",
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestGateway_Answer(t *testing.T) {
	srv, captured := fakeCompletionServer(t, "La cohesión mide qué tan relacionadas están las responsabilidades de un módulo.")
	g := newGatewayWith("test-key", srv.URL, "deepseek-chat", 5*time.Second)

	history := []store.Message{
		{Role: store.RoleUser, Content: "hola"},
		{Role: store.RoleAssistant, Content: "hola, ¿en qué te ayudo?"},
	}
	corpus := []store.CorpusDocument{
		{Name: "pressman.txt", Text: "cohesión y acoplamiento en diseño de software"},
	}

	answer, err := g.Answer(context.Background(), "¿qué es la cohesión?", history, nil, corpus)
	require.NoError(t, err)
	assert.Contains(t, answer, "cohesión")

	assert.Equal(t, "deepseek-chat", captured.Model)
	assert.InDelta(t, 0.4, captured.Temperature, 0.001)

	// system + 2 history + new question
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, store.RoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "[pressman.txt]")
	assert.Equal(t, "hola", captured.Messages[1].Content)
	assert.Equal(t, "hola, ¿en qué te ayudo?", captured.Messages[2].Content)
	assert.Equal(t, store.RoleUser, captured.Messages[3].Role)
	assert.Equal(t, "¿qué es la cohesión?", captured.Messages[3].Content)
}

func TestGateway_NetworkFailureIsClassified(t *testing.T) {
	// Nothing listens here; the dial fails before any HTTP exchange.
	g := newGatewayWith("test-key", "http://127.0.0.1:1/v1", "deepseek-chat", 2*time.Second)

	_, err := g.Answer(context.Background(), "hola", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestGateway_TimeoutIsClassifiedAsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	g := newGatewayWith("test-key", srv.URL, "deepseek-chat", 50*time.Millisecond)

	_, err := g.Answer(context.Background(), "hola", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestGateway_ServiceErrorIsNotNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	g := newGatewayWith("test-key", srv.URL, "deepseek-chat", 5*time.Second)

	_, err := g.Answer(context.Background(), "hola", nil, nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestGateway_SystemInstruction(t *testing.T) {
	g := newGatewayWith("test-key", "http://unused", "deepseek-chat", time.Second)

	files := []store.UserFile{
		{Name: "apuntes.docx", Content: store.FileContent{Kind: store.KindText, Text: "resumen de UML"}},
		{Name: "diagrama.png", Content: store.FileContent{Kind: store.KindImage, Text: "texto OCR que no debe aparecer"}},
	}
	corpus := []store.CorpusDocument{
		{Name: "book.txt", Text: strings.Repeat("x", 3000)},
	}

	instr := g.systemInstruction("UML", files, corpus)

	assert.Contains(t, instr, systemPersona)
	assert.Contains(t, instr, "[apuntes.docx]\nresumen de UML")

	// Image files contribute the label only; their OCR text stays out of
	// the prompt.
	assert.Contains(t, instr, "[diagrama.png] (imagen adjunta)")
	assert.NotContains(t, instr, "texto OCR que no debe aparecer")

	// Corpus snippets are capped at the snippet limit.
	assert.Contains(t, instr, "[book.txt]")
	assert.NotContains(t, instr, strings.Repeat("x", snippetLimit+1))
}
