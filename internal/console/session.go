// Package console holds the interactive session state for the command line
// front end: selected persona, provider choice, prompt, output, and the
// signed-in user's document list.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

const (
	LoadingMarker = "生成中..."
	FailureText   = "生成失败，请检查控制台"

	promptTemplate = "你是一位专业的%s。请根据以下用户指令完成任务:\n%s"

	titleMaxRunes = 50
)

var (
	ErrMissingInput    = errors.New("请选择员工并输入指令")
	ErrBusy            = errors.New("a generation request is already in flight")
	ErrUnknownPersona  = errors.New("unknown persona")
	ErrUnknownProvider = errors.New("provider must be openai or gemini")
	ErrNotConfirmed    = errors.New("deletion not confirmed")
	ErrNotSignedIn     = errors.New("sign in first")
)

// Personas are the five AI employees the user can pick from.
var Personas = []string{
	"AI架构师 👩‍💻",
	"AI程序员 👨‍💻",
	"AI文档员 ✍️",
	"AI测试员 🧪",
	"AI市场专员 📈",
}

// Backend is the slice of the API client the session drives.
// *client.Client satisfies it.
type Backend interface {
	Generate(ctx context.Context, provider, prompt string) (string, error)
	CreateDocument(ctx context.Context, employee, title, content string) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	DeleteDocument(ctx context.Context, documentID uint) error
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error)
}

// Session is the per-run UI state. Only one generation may be in flight
// at a time; the submitting flag rejects re-entry rather than queueing.
type Session struct {
	backend Backend

	Provider string
	Persona  string
	Prompt   string
	Output   string

	submitting    bool
	authenticated bool

	Documents []model.Document
}

func NewSession(backend Backend) *Session {
	return &Session{
		backend:  backend,
		Provider: "openai",
	}
}

func (s *Session) SelectProvider(provider string) error {
	if provider != "openai" && provider != "gemini" {
		return ErrUnknownProvider
	}
	s.Provider = provider
	return nil
}

func (s *Session) SelectPersona(persona string) error {
	for _, p := range Personas {
		if p == persona {
			s.Persona = persona
			return nil
		}
	}
	return ErrUnknownPersona
}

// SetAuthenticated flips the persistence capability. When false the
// session still generates, it just stops writing documents.
func (s *Session) SetAuthenticated(authenticated bool) {
	s.authenticated = authenticated
	if !authenticated {
		s.Documents = nil
	}
}

func (s *Session) Authenticated() bool { return s.authenticated }
func (s *Session) Submitting() bool    { return s.submitting }

// Generate runs one full generation cycle: validate, mark submitting,
// compose the persona prompt, call the relay, and on success persist a
// document and reload the list when a user is signed in. The output
// field always ends up holding either the result or the failure text.
func (s *Session) Generate(ctx context.Context) error {
	if s.submitting {
		return ErrBusy
	}
	if s.Persona == "" || s.Prompt == "" {
		return ErrMissingInput
	}

	s.submitting = true
	s.Output = LoadingMarker
	defer func() { s.submitting = false }()

	rawPrompt := s.Prompt
	fullPrompt := fmt.Sprintf(promptTemplate, s.Persona, rawPrompt)

	result, err := s.backend.Generate(ctx, s.Provider, fullPrompt)
	if err != nil {
		s.Output = FailureText
		return fmt.Errorf("generate failed: %w", err)
	}
	s.Output = result

	if !s.authenticated {
		return nil
	}
	if _, err := s.backend.CreateDocument(ctx, s.Persona, truncateTitle(rawPrompt), result); err != nil {
		return fmt.Errorf("save document failed: %w", err)
	}
	return s.RefreshDocuments(ctx)
}

// RefreshDocuments replaces the local list wholesale with the server's.
func (s *Session) RefreshDocuments(ctx context.Context) error {
	if !s.authenticated {
		return ErrNotSignedIn
	}
	documents, err := s.backend.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents failed: %w", err)
	}
	s.Documents = documents
	return nil
}

// DeleteDocument removes one document after explicit confirmation, then
// reloads the list.
func (s *Session) DeleteDocument(ctx context.Context, documentID uint, confirmed bool) error {
	if !s.authenticated {
		return ErrNotSignedIn
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.backend.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return s.RefreshDocuments(ctx)
}

// Upload stores one file and reloads the list. The server records the
// document for it; nothing is created locally on failure.
func (s *Session) Upload(ctx context.Context, filename string, file io.Reader) (*model.Document, error) {
	if !s.authenticated {
		return nil, ErrNotSignedIn
	}
	document, err := s.backend.UploadDocument(ctx, filename, file)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if err := s.RefreshDocuments(ctx); err != nil {
		return document, err
	}
	return document, nil
}

func truncateTitle(raw string) string {
	runes := []rune(raw)
	if len(runes) <= titleMaxRunes {
		return raw
	}
	return string(runes[:titleMaxRunes])
}
