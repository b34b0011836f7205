package models

import "context"

// RemoteFile is the provider-side handle of an uploaded file.
// Gemini fills URI; inline providers keep the bytes in Data instead.
type RemoteFile struct {
	ID          string
	DisplayName string
	MIMEType    string
	URI         string
	SizeBytes   int64
	Data        []byte
}

// Part is one element of an outgoing message: either text or a file.
type Part struct {
	Text string
	File *RemoteFile
}

// Text returns a text part.
func Text(s string) Part { return Part{Text: s} }

// FilePart returns a part that references an uploaded file.
func FilePart(f *RemoteFile) Part { return Part{File: f} }

// Conversation accumulates history for one chat and sends the next user turn.
type Conversation interface {
	Send(ctx context.Context, parts []Part) (string, error)
}

// Provider is the remote model collaborator: it stores files and opens chats.
type Provider interface {
	Name() string
	UploadFile(ctx context.Context, localPath, mimeType string) (*RemoteFile, error)
	StartChat(ctx context.Context, systemInstruction string) (Conversation, error)
	Close() error
}
