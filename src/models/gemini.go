package models

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

const DefaultGeminiModel = "gemini-flash-latest"

// GeminiProvider uploads files through the Gemini File API and chats with
// server-referenced attachments.
type GeminiProvider struct {
	Client *genai.Client
	Model  string
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiProvider{Client: client, Model: model, logger: logger}, nil
}

func (g *GeminiProvider) Name() string { return ProviderGemini }

func (g *GeminiProvider) UploadFile(ctx context.Context, localPath, mimeType string) (*RemoteFile, error) {
	f, err := g.Client.UploadFileFromPath(ctx, localPath, &genai.UploadFileOptions{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(localPath),
	})
	if err != nil {
		return nil, WrapRemote(OpUpload, g.Name(), err)
	}
	g.logger.Debug("gemini file uploaded",
		zap.String("name", f.Name),
		zap.String("mime", f.MIMEType),
		zap.Int64("bytes", f.SizeBytes))
	return &RemoteFile{
		ID:          f.Name,
		DisplayName: f.DisplayName,
		MIMEType:    f.MIMEType,
		URI:         f.URI,
		SizeBytes:   f.SizeBytes,
	}, nil
}

func (g *GeminiProvider) StartChat(_ context.Context, systemInstruction string) (Conversation, error) {
	model := g.Client.GenerativeModel(g.Model)
	if si := strings.TrimSpace(systemInstruction); si != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(si)}}
	}
	return &geminiConversation{session: model.StartChat()}, nil
}

func (g *GeminiProvider) Close() error {
	return g.Client.Close()
}

type geminiConversation struct {
	session *genai.ChatSession
}

func (c *geminiConversation) Send(ctx context.Context, parts []Part) (string, error) {
	gp, err := toGeminiParts(parts)
	if err != nil {
		return "", WrapRemote(OpSend, ProviderGemini, err)
	}
	resp, err := c.session.SendMessage(ctx, gp...)
	if err != nil {
		return "", WrapRemote(OpSend, ProviderGemini, fmt.Errorf("gemini generate: %w", err))
	}
	text, err := geminiText(resp)
	if err != nil {
		return "", WrapRemote(OpSend, ProviderGemini, err)
	}
	return text, nil
}

func toGeminiParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.File != nil:
			if p.File.URI == "" {
				return nil, fmt.Errorf("file %q has no remote URI", p.File.DisplayName)
			}
			out = append(out, genai.FileData{MIMEType: p.File.MIMEType, URI: p.File.URI})
		case p.Text != "":
			out = append(out, genai.Text(p.Text))
		}
	}
	if len(out) == 0 {
		return nil, errors.New("message has no content")
	}
	return out, nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}

var _ Provider = (*GeminiProvider)(nil)
