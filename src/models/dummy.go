package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyProvider is a lightweight provider useful for local testing without API calls.
// It echoes the rendered user turn, so inlined attachments are visible in replies.
type DummyProvider struct {
	Prefix string
}

func NewDummyProvider(prefix string) *DummyProvider {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyProvider{Prefix: prefix}
}

func (d *DummyProvider) Name() string { return ProviderDummy }

func (d *DummyProvider) UploadFile(_ context.Context, localPath, mimeType string) (*RemoteFile, error) {
	f, err := uploadInline(localPath, mimeType)
	if err != nil {
		return nil, WrapRemote(OpUpload, d.Name(), err)
	}
	return f, nil
}

func (d *DummyProvider) StartChat(_ context.Context, systemInstruction string) (Conversation, error) {
	return newInlineConversation(d.Name(), systemInstruction, d.complete), nil
}

func (d *DummyProvider) Close() error { return nil }

func (d *DummyProvider) complete(_ context.Context, _ string, history []Turn) (string, error) {
	last := strings.TrimSpace(history[len(history)-1].Text)
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

var _ Provider = (*DummyProvider)(nil)
