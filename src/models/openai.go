package models

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider chats through the Chat Completions API. Files are held in
// memory and inlined into the user turn.
type OpenAIProvider struct {
	Client *openai.Client
	Model  string
	logger *zap.Logger
}

func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{Client: openai.NewClient(apiKey), Model: model, logger: logger}
}

func (o *OpenAIProvider) Name() string { return ProviderOpenAI }

func (o *OpenAIProvider) UploadFile(_ context.Context, localPath, mimeType string) (*RemoteFile, error) {
	f, err := uploadInline(localPath, mimeType)
	if err != nil {
		return nil, WrapRemote(OpUpload, o.Name(), err)
	}
	return f, nil
}

func (o *OpenAIProvider) StartChat(_ context.Context, systemInstruction string) (Conversation, error) {
	return newInlineConversation(o.Name(), systemInstruction, o.complete), nil
}

func (o *OpenAIProvider) Close() error { return nil }

func (o *OpenAIProvider) complete(ctx context.Context, system string, history []Turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.Model,
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Provider = (*OpenAIProvider)(nil)
