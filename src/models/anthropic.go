package models

import (
	"context"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const DefaultAnthropicModel = "claude-3-5-sonnet-latest"

// AnthropicProvider chats through the Messages API with client-side history.
type AnthropicProvider struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
	logger    *zap.Logger
}

func NewAnthropicProvider(apiKey, model string, logger *zap.Logger) *AnthropicProvider {
	if strings.TrimSpace(model) == "" {
		model = DefaultAnthropicModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		Client:    &cl,
		Model:     model,
		MaxTokens: 2048,
		logger:    logger,
	}
}

func (a *AnthropicProvider) Name() string { return ProviderAnthropic }

func (a *AnthropicProvider) UploadFile(_ context.Context, localPath, mimeType string) (*RemoteFile, error) {
	f, err := uploadInline(localPath, mimeType)
	if err != nil {
		return nil, WrapRemote(OpUpload, a.Name(), err)
	}
	return f, nil
}

func (a *AnthropicProvider) StartChat(_ context.Context, systemInstruction string) (Conversation, error) {
	return newInlineConversation(a.Name(), systemInstruction, a.complete), nil
}

func (a *AnthropicProvider) Close() error { return nil }

func (a *AnthropicProvider) complete(ctx context.Context, system string, history []Turn) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, t := range history {
		if t.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

var _ Provider = (*AnthropicProvider)(nil)
