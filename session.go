// Package analyst holds the conversation state of a single-user data-analysis
// chat: the transcript, the one pending uploaded file, and the marker that
// stops the same upload from being processed twice.
//
// A Session is not safe for concurrent use. Surfaces that can receive
// overlapping requests must serialise calls themselves.
package analyst

import (
	"context"
	"errors"
	"strings"

	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"go.uber.org/zap"
)

var (
	ErrNoProvider     = errors.New("session requires a model provider")
	ErrEmptyPrompt    = errors.New("prompt is empty")
	ErrUnknownPersona = errors.New("unknown persona")
)

// Role tags a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one line of the transcript.
type Entry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// State of the attachment tracker.
type State string

const (
	StateIdle     State = "idle"
	StateAttached State = "attached"
)

// UploadResult describes what Upload did with a file.
type UploadResult struct {
	Name      string `json:"name"`
	MIMEType  string `json:"mime_type,omitempty"`
	RemoteID  string `json:"remote_id,omitempty"`
	Converted bool   `json:"converted"`
	Skipped   bool   `json:"skipped"`
}

// Snapshot is a read-only view of the session for surfaces.
type Snapshot struct {
	Persona      Persona `json:"persona"`
	PersonaTitle string  `json:"persona_title"`
	State        State   `json:"state"`
	PendingFile  string  `json:"pending_file,omitempty"`
	LastUploaded string  `json:"last_uploaded,omitempty"`
	Entries      int     `json:"entries"`
}

// Options configure a new Session.
type Options struct {
	Provider   models.Provider
	Normalizer *normalize.Normalizer
	Persona    Persona
	Logger     *zap.Logger
}

// Session is the process-wide conversation state.
type Session struct {
	provider   models.Provider
	normalizer *normalize.Normalizer
	logger     *zap.Logger

	persona      Persona
	transcript   []Entry
	pending      *models.RemoteFile
	lastUploaded string
	conversation models.Conversation
}

// New creates a Session in the Idle state.
func New(opts Options) (*Session, error) {
	if opts.Provider == nil {
		return nil, ErrNoProvider
	}

	persona := opts.Persona
	if persona == "" {
		persona = DefaultPersona
	}
	if !persona.Valid() {
		return nil, ErrUnknownPersona
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalize.New(normalize.WithLogger(logger))
	}

	return &Session{
		provider:   opts.Provider,
		normalizer: normalizer,
		logger:     logger,
		persona:    persona,
	}, nil
}

// Upload normalizes and transfers a file, making it the pending attachment.
// A file whose name matches the last accepted upload is skipped without any
// normalization or remote call. On failure the session is left unchanged.
func (s *Session) Upload(ctx context.Context, up normalize.Upload) (UploadResult, error) {
	name := strings.TrimSpace(up.Name)
	res := UploadResult{Name: name}
	if name != "" && name == s.lastUploaded {
		s.logger.Debug("upload skipped, already accepted", zap.String("file", name))
		res.Skipped = true
		return res, nil
	}

	var remote *models.RemoteFile
	err := s.normalizer.WithArtifact(ctx, up, func(art *normalize.Artifact) error {
		f, err := s.provider.UploadFile(ctx, art.LocalPath, art.MIMEType)
		if err != nil {
			return models.WrapRemote(models.OpUpload, s.provider.Name(), err)
		}
		remote = f
		res.MIMEType = art.MIMEType
		res.Converted = art.Converted
		return nil
	})
	if err != nil {
		s.logger.Warn("upload failed", zap.String("file", name), zap.Error(err))
		return res, err
	}

	// Temp files carry generated names; show the user's own.
	if name != "" {
		remote.DisplayName = name
	}
	// A new upload replaces any pending one.
	s.pending = remote
	s.lastUploaded = name
	res.RemoteID = remote.ID

	s.logger.Info("upload accepted",
		zap.String("file", name),
		zap.String("mime", res.MIMEType),
		zap.Bool("converted", res.Converted),
		zap.String("remote_id", remote.ID))
	return res, nil
}

// Send records the user's prompt, dispatches it together with the pending
// attachment (if any) and records the reply.
//
// The pending attachment is cleared before the remote call, so a failed
// send does not re-queue it. On failure the transcript keeps the user entry
// and gets no assistant entry.
func (s *Session) Send(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	s.transcript = append(s.transcript, Entry{Role: RoleUser, Text: prompt})

	bundle := Bundle{Text: prompt, Attachment: s.pending}
	s.pending = nil

	conv, err := s.ensureConversation(ctx)
	if err != nil {
		s.logger.Warn("start chat failed", zap.Error(err))
		return "", err
	}

	reply, err := conv.Send(ctx, bundle.Parts())
	if err != nil {
		err = models.WrapRemote(models.OpSend, s.provider.Name(), err)
		s.logger.Warn("send failed", zap.Bool("with_attachment", bundle.HasAttachment()), zap.Error(err))
		return "", err
	}

	s.transcript = append(s.transcript, Entry{Role: RoleAssistant, Text: reply})
	s.logger.Debug("message exchanged",
		zap.Bool("with_attachment", bundle.HasAttachment()),
		zap.Int("entries", len(s.transcript)))
	return reply, nil
}

func (s *Session) ensureConversation(ctx context.Context) (models.Conversation, error) {
	if s.conversation != nil {
		return s.conversation, nil
	}
	conv, err := s.provider.StartChat(ctx, s.persona.Instruction())
	if err != nil {
		return nil, models.WrapRemote(models.OpStartChat, s.provider.Name(), err)
	}
	s.conversation = conv
	return conv, nil
}

// Reset starts over: transcript, pending attachment, last-upload marker and
// the remote conversation are all dropped. The persona is kept.
func (s *Session) Reset() {
	s.transcript = nil
	s.pending = nil
	s.lastUploaded = ""
	s.conversation = nil
	s.logger.Info("session reset", zap.String("persona", s.persona.String()))
}

// SwitchPersona resets the session and selects p for the next conversation.
// Selecting the active persona changes nothing and reports false.
func (s *Session) SwitchPersona(p Persona) (bool, error) {
	if !p.Valid() {
		return false, ErrUnknownPersona
	}
	if p == s.persona {
		return false, nil
	}
	s.Reset()
	s.persona = p
	s.logger.Info("persona switched", zap.String("persona", p.String()))
	return true, nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Entry {
	return append([]Entry(nil), s.transcript...)
}

// Pending returns the attachment that will go out with the next message.
func (s *Session) Pending() *models.RemoteFile { return s.pending }

// LastUploaded returns the name of the last accepted upload.
func (s *Session) LastUploaded() string { return s.lastUploaded }

func (s *Session) Persona() Persona { return s.persona }

func (s *Session) State() State {
	if s.pending != nil {
		return StateAttached
	}
	return StateIdle
}

// Snapshot summarises the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Persona:      s.persona,
		PersonaTitle: s.persona.Title(),
		State:        s.State(),
		LastUploaded: s.lastUploaded,
		Entries:      len(s.transcript),
	}
	if s.pending != nil {
		snap.PendingFile = s.pending.DisplayName
	}
	return snap
}
