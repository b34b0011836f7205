package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// ---------------------------- Ollama -----------------------------------------

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "llama3"
)

// OllamaProvider chats with a local Ollama server.
type OllamaProvider struct {
	Client *ollama.Client
	Model  string
	logger *zap.Logger
}

func NewOllamaProvider(host, model string, logger *zap.Logger) (*OllamaProvider, error) {
	if strings.TrimSpace(host) == "" {
		host = DefaultOllamaHost
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultOllamaModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	c := ollama.NewClient(u, httpClient)
	return &OllamaProvider{Client: c, Model: model, logger: logger}, nil
}

func (o *OllamaProvider) Name() string { return ProviderOllama }

func (o *OllamaProvider) UploadFile(_ context.Context, localPath, mimeType string) (*RemoteFile, error) {
	f, err := uploadInline(localPath, mimeType)
	if err != nil {
		return nil, WrapRemote(OpUpload, o.Name(), err)
	}
	return f, nil
}

func (o *OllamaProvider) StartChat(_ context.Context, systemInstruction string) (Conversation, error) {
	return newInlineConversation(o.Name(), systemInstruction, o.complete), nil
}

func (o *OllamaProvider) Close() error { return nil }

func (o *OllamaProvider) complete(ctx context.Context, system string, history []Turn) (string, error) {
	msgs := make([]ollama.Message, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, ollama.Message{Role: "system", Content: system})
	}
	for _, t := range history {
		msgs = append(msgs, ollama.Message{Role: t.Role, Content: t.Text})
	}

	stream := false
	var text strings.Builder
	req := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: msgs,
		Stream:   &stream,
	}
	if err := o.Client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		text.WriteString(cr.Message.Content)
		return nil
	}); err != nil {
		return "", err
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

var _ Provider = (*OllamaProvider)(nil)
