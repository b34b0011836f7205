package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Roles used in client-side chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of client-side chat history.
type Turn struct {
	Role string
	Text string
}

// completer produces the assistant reply for the given history; the last
// turn is always the pending user message.
type completer func(ctx context.Context, system string, history []Turn) (string, error)

// uploadInline reads a local file into memory. Providers without a file API
// use it in place of a remote upload, so the temp file can be deleted as soon
// as UploadFile returns.
func uploadInline(localPath, mimeType string) (*RemoteFile, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", localPath, err)
	}
	return &RemoteFile{
		ID:          "inline-" + uuid.NewString(),
		DisplayName: filepath.Base(localPath),
		MIMEType:    mimeType,
		SizeBytes:   int64(len(data)),
		Data:        data,
	}, nil
}

// inlineConversation keeps history client-side and replays it on each turn.
type inlineConversation struct {
	provider string
	system   string
	history  []Turn
	complete completer
}

func newInlineConversation(provider, system string, complete completer) *inlineConversation {
	return &inlineConversation{provider: provider, system: strings.TrimSpace(system), complete: complete}
}

func (c *inlineConversation) Send(ctx context.Context, parts []Part) (string, error) {
	user := renderParts(parts)
	if strings.TrimSpace(user) == "" {
		return "", WrapRemote(OpSend, c.provider, fmt.Errorf("message has no content"))
	}

	history := append(append([]Turn(nil), c.history...), Turn{Role: RoleUser, Text: user})
	reply, err := c.complete(ctx, c.system, history)
	if err != nil {
		return "", WrapRemote(OpSend, c.provider, err)
	}
	c.history = append(history, Turn{Role: RoleAssistant, Text: reply})
	return reply, nil
}

// History returns a copy of the turns exchanged so far.
func (c *inlineConversation) History() []Turn {
	return append([]Turn(nil), c.history...)
}
