package chat

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"guestdesk/internal/ai"
	"guestdesk/internal/classify"
	"guestdesk/internal/knowledge"
	"guestdesk/internal/model"
)

const systemPromptHeader = "You are a warm, concise assistant answering guests on behalf of the event hosts. " +
	"Answer in the language the guest uses. Ground every factual answer in the reference material below; " +
	"if it does not contain the answer, say you are not sure and suggest asking the hosts directly."

const noKnowledgeNotice = "No reference material has been provided for this event. " +
	"Reply with common courtesy and do not invent event details."

// TurnInput is one inbound guest message. SessionID may be empty; a
// fresh id is minted in that case.
type TurnInput struct {
	SessionID   string
	TenantID    uint
	Content     string
	DisplayName string
}

type TurnResult struct {
	SessionID      string        `json:"session_id"`
	Reply          string        `json:"reply"`
	Classification classify.Kind `json:"classification,omitempty"`
	TokensUsed     int           `json:"tokens_used,omitempty"`
	Greeting       bool          `json:"greeting,omitempty"`
}

// HandleTurn drives one conversation turn.
//
// The ordering is a contract: history is snapshotted BEFORE the current
// user message is written, so the message never duplicates itself inside
// the history handed to generation; and nothing is persisted until
// generation succeeds, so a failed turn leaves the session exactly as it
// was.
func (s *Service) HandleTurn(ctx context.Context, input TurnInput) (*TurnResult, error) {
	if input.TenantID == 0 {
		return nil, ErrInvalidInput
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, created, err := s.GetOrCreate(sessionID, input.TenantID, strings.TrimSpace(input.DisplayName))
	if err != nil {
		return nil, err
	}

	// First contact: greet and stop. No retrieval, no generation, and
	// the submitted text is not persisted.
	if created {
		greeting := &model.Message{
			SessionID: sessionID,
			TenantID:  input.TenantID,
			Role:      model.RoleAssistant,
			Content:   s.greeting,
		}
		if err := s.messages.Create(greeting); err != nil {
			return nil, err
		}
		s.invalidateHistory(ctx, sessionID)
		return &TurnResult{SessionID: sessionID, Reply: s.greeting, Greeting: true}, nil
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	kind := s.classifier.Classify(content)

	history, err := s.snapshotHistory(ctx, sessionID, input.TenantID)
	if err != nil {
		return nil, err
	}

	retrieval := s.retriever.Retrieve(input.TenantID, content)
	systemPrompt := buildSystemPrompt(retrieval)

	completion, err := s.generator.Complete(ctx, systemPrompt, toAIMessages(history), content)
	if err != nil {
		return nil, err
	}

	if err := s.recordTurn(ctx, sessionID, input, content, kind, completion); err != nil {
		return nil, err
	}

	// the first answered message names the session in the host's list
	if session.Title == "" {
		if err := s.sessions.UpdateTitle(sessionID, sessionTitle(content)); err != nil {
			log.Printf("update session title failed: %v", err)
		}
	}

	return &TurnResult{
		SessionID:      sessionID,
		Reply:          completion.Text,
		Classification: kind,
		TokensUsed:     completion.TokensUsed,
	}, nil
}

// snapshotHistory returns the last maxContext messages, oldest first,
// from the cache when it is clean, falling back to storage.
func (s *Service) snapshotHistory(ctx context.Context, sessionID string, tenantID uint) ([]model.Message, error) {
	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return tailMessages(cached, s.maxContext), nil
			}
		}
	}

	messages, err := s.messages.ListRecentBySessionID(sessionID, tenantID, s.maxContext)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			if cacheErr := s.cache.SetHistory(ctx, sessionID, messages); cacheErr != nil {
				log.Printf("set history cache failed: %v", cacheErr)
			}
		}
	}
	return messages, nil
}

// recordTurn persists the outcome of a successful generation: the user
// message, a curated copy when the kind warrants one, and the reply.
func (s *Service) recordTurn(ctx context.Context, sessionID string, input TurnInput, content string, kind classify.Kind, completion *ai.Completion) error {
	s.invalidateHistory(ctx, sessionID)

	userMessage := &model.Message{
		SessionID: sessionID,
		TenantID:  input.TenantID,
		Role:      model.RoleUser,
		Content:   content,
	}
	if err := s.messages.Create(userMessage); err != nil {
		return err
	}

	if kind.Curated() && s.publisher != nil {
		curatedCopy := model.CuratedMessage{
			TenantID:    input.TenantID,
			SessionID:   sessionID,
			DisplayName: strings.TrimSpace(input.DisplayName),
			Kind:        string(kind),
			Content:     content,
		}
		// best effort: the transcript is the source of truth, the
		// review queue is a convenience
		if err := s.publisher.Publish(ctx, curatedCopy); err != nil {
			log.Printf("publish curated message failed: %v", err)
		}
	}

	assistantMessage := &model.Message{
		SessionID:  sessionID,
		TenantID:   input.TenantID,
		Role:       model.RoleAssistant,
		Content:    completion.Text,
		TokensUsed: completion.TokensUsed,
	}
	if err := s.messages.Create(assistantMessage); err != nil {
		return err
	}

	if err := s.sessions.Touch(sessionID); err != nil {
		log.Printf("touch session failed: %v", err)
	}
	return nil
}

func buildSystemPrompt(retrieval knowledge.Retrieval) string {
	if retrieval.Empty() {
		return systemPromptHeader + "\n\n" + noKnowledgeNotice
	}
	return systemPromptHeader + "\n\nReference material:\n" + retrieval.Text
}

func toAIMessages(history []model.Message) []ai.Message {
	out := make([]ai.Message, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = model.RoleUser
		}
		out = append(out, ai.Message{Role: role, Content: m.Content})
	}
	return out
}

func sessionTitle(content string) string {
	runes := []rune(content)
	if len(runes) > 24 {
		return string(runes[:24])
	}
	return content
}

func tailMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
