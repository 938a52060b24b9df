package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/daniellegy/softia/internal/config"
	"github.com/daniellegy/softia/internal/retrieve"
	"github.com/daniellegy/softia/internal/store"
)

const (
	// snippetLimit bounds how much of each document or file makes it into
	// the prompt.
	snippetLimit = 2000

	chatTemperature = 0.4

	systemPersona = "Eres un experto en ingeniería de software. " +
		"Responde de forma clara y académica en español. " +
		"Usa el historial de la conversación como contexto. " +
		"Usa la siguiente información de los libros y archivos del estudiante como base, " +
		"pero complementa con tu conocimiento general cuando sea necesario."
)

// ErrNetwork classifies a chat turn that failed because the completion
// service could not be reached at all, as opposed to the service answering
// with a failure. Callers show a distinct message for it.
var ErrNetwork = errors.New("completion service unreachable")

// Gateway assembles the retrieval-augmented prompt and performs the single,
// non-streaming completion call.
type Gateway struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewGateway() *Gateway {
	cfg := openai.DefaultConfig(config.AppConfig.DeepSeekAPIKey)
	cfg.BaseURL = config.AppConfig.DeepSeekBaseURL

	return &Gateway{
		client:  openai.NewClientWithConfig(cfg),
		model:   config.AppConfig.ChatModel,
		timeout: time.Duration(config.AppConfig.LLMTimeoutSecs) * time.Second,
	}
}

// newGatewayWith builds a gateway against an arbitrary endpoint; used by
// tests to point at a local server.
func newGatewayWith(apiKey, baseURL, model string, timeout time.Duration) *Gateway {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Gateway{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Answer builds the system instruction from the user's files and the most
// similar corpus documents, sends it with the full history plus the new
// question, and returns the completion text.
//
// There is exactly one attempt: failures are classified (ErrNetwork vs
// generic gateway error) and surfaced, never retried.
func (g *Gateway) Answer(ctx context.Context, question string, history []store.Message, files []store.UserFile, corpus []store.CorpusDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: g.systemInstruction(question, files, corpus),
	})
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: chatTemperature,
	})
	if err != nil {
		if isNetworkError(err) {
			return "", fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// systemInstruction is the persona plus labeled snippets: the user's own
// files first, then the corpus documents most similar to the question.
// Image-kind files contribute only a placeholder label; their OCR text is
// stored but deliberately kept out of the prompt.
func (g *Gateway) systemInstruction(question string, files []store.UserFile, corpus []store.CorpusDocument) string {
	var b strings.Builder
	b.WriteString(systemPersona)

	for _, f := range files {
		b.WriteString("\n\n")
		if f.Content.Kind == store.KindText {
			fmt.Fprintf(&b, "[%s]\n%s", f.Name, truncate(f.Content.Text, snippetLimit))
		} else {
			fmt.Fprintf(&b, "[%s] (imagen adjunta)", f.Name)
		}
	}

	for _, r := range retrieve.Retrieve(question, corpus, retrieve.DefaultTopN) {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "[%s]\n%s", r.Name, truncate(r.Text, snippetLimit))
	}

	return b.String()
}

// truncate keeps the first limit characters, never splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// isNetworkError reports whether err is a transport-level failure rather
// than a response from the service.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
