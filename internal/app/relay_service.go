package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/ai"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

var (
	ErrMissingField    = errors.New("provider or prompt is missing")
	ErrUnknownProvider = errors.New("unknown provider")
)

// AuditPublisher enqueues generation audit records; nil disables auditing.
type AuditPublisher interface {
	Publish(ctx context.Context, record model.GenerationRecord) error
}

// RelayService forwards one prompt to one provider per call. It owns no
// state between invocations; the audit event is the only side effect beyond
// the upstream call, and it never influences the returned result.
type RelayService struct {
	clients   map[ai.Provider]ai.Client
	publisher AuditPublisher
}

type GenerateInput struct {
	Provider string
	Prompt   string
	Employee string
	UserID   uint
}

func NewRelayService(clients map[ai.Provider]ai.Client, publisher AuditPublisher) *RelayService {
	return &RelayService{
		clients:   clients,
		publisher: publisher,
	}
}

func (s *RelayService) Generate(ctx context.Context, input GenerateInput) (string, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" || strings.TrimSpace(input.Provider) == "" {
		return "", ErrMissingField
	}

	provider, ok := ai.ParseProvider(input.Provider)
	if !ok {
		return "", ErrUnknownProvider
	}
	client, ok := s.clients[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	start := time.Now()
	result, err := client.Generate(ctx, prompt)
	s.publishAudit(input, client, prompt, result, time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	return result, nil
}

func (s *RelayService) publishAudit(input GenerateInput, client ai.Client, prompt, result string, elapsed time.Duration, ok bool) {
	if s.publisher == nil {
		return
	}

	record := model.GenerationRecord{
		UserID:      input.UserID,
		Employee:    strings.TrimSpace(input.Employee),
		Provider:    string(client.Provider()),
		Model:       client.Model(),
		PromptChars: len([]rune(prompt)),
		ResultChars: len([]rune(result)),
		DurationMS:  elapsed.Milliseconds(),
		OK:          ok,
		CreatedAt:   time.Now(),
	}
	// Detached context: auditing must not extend or cancel the request.
	if err := s.publisher.Publish(context.Background(), record); err != nil {
		log.Printf("publish generation audit failed: %v", err)
	}
}
