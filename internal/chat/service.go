// Package chat owns guest sessions and orchestrates conversation turns.
package chat

import (
	"context"
	"errors"
	"log"

	"guestdesk/internal/ai"
	"guestdesk/internal/classify"
	"guestdesk/internal/knowledge"
	"guestdesk/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrOwnershipConflict: the session id is already bound to another
	// tenant. Never silently reassigned.
	ErrOwnershipConflict = errors.New("session id belongs to another tenant")
	ErrSessionNotFound   = errors.New("session not found")
	ErrCuratedNotFound   = errors.New("curated message not found")
)

// SessionStore persists sessions. GetByID must look across all tenants
// so ownership conflicts are detectable.
type SessionStore interface {
	Create(session *model.Session) error
	GetByID(id string) (*model.Session, error)
	ListByTenantID(tenantID uint) ([]model.Session, error)
	Touch(id string) error
	UpdateTitle(id, title string) error
	DeleteByIDAndTenantID(id string, tenantID uint) error
}

type MessageStore interface {
	Create(message *model.Message) error
	ListRecentBySessionID(sessionID string, tenantID uint, limit int) ([]model.Message, error)
	ListBySessionID(sessionID string, tenantID uint, limit int) ([]model.Message, error)
	DeleteBySessionID(sessionID string, tenantID uint) error
}

type CuratedStore interface {
	ListByTenantID(tenantID uint, kind string, unreadOnly bool) ([]model.CuratedMessage, error)
	MarkRead(id, tenantID uint) (bool, error)
}

// CuratedPublisher hands a curated copy to the persist queue; the
// worker writes it to storage off the request path.
type CuratedPublisher interface {
	Publish(ctx context.Context, msg model.CuratedMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// Retriever selects grounding context for a query.
type Retriever interface {
	Retrieve(tenantID uint, query string) knowledge.Retrieval
}

type Service struct {
	sessions   SessionStore
	messages   MessageStore
	curated    CuratedStore
	publisher  CuratedPublisher
	cache      HistoryCache
	retriever  Retriever
	generator  ai.Generator
	classifier classify.Classifier
	greeting   string
	maxContext int
}

func NewService(
	sessions SessionStore,
	messages MessageStore,
	curated CuratedStore,
	publisher CuratedPublisher,
	cache HistoryCache,
	retriever Retriever,
	generator ai.Generator,
	classifier classify.Classifier,
	greeting string,
	maxContext int,
) *Service {
	if maxContext <= 0 {
		maxContext = 10
	}
	if greeting == "" {
		greeting = "您好！欢迎光临，有任何问题都可以问我。"
	}
	return &Service{
		sessions:   sessions,
		messages:   messages,
		curated:    curated,
		publisher:  publisher,
		cache:      cache,
		retriever:  retriever,
		generator:  generator,
		classifier: classifier,
		greeting:   greeting,
		maxContext: maxContext,
	}
}

// GetOrCreate resolves a session id for a tenant. An id held by a
// different tenant is a conflict, never a takeover; no write happens in
// that case. The boolean reports whether the session was created.
func (s *Service) GetOrCreate(sessionID string, tenantID uint, displayName string) (*model.Session, bool, error) {
	if sessionID == "" || tenantID == 0 {
		return nil, false, ErrInvalidInput
	}

	existing, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.TenantID != tenantID {
			return nil, false, ErrOwnershipConflict
		}
		return existing, false, nil
	}

	session := &model.Session{
		ID:          sessionID,
		TenantID:    tenantID,
		DisplayName: displayName,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (s *Service) ListSessions(tenantID uint) ([]model.Session, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessions.ListByTenantID(tenantID)
}

// GetTranscript returns the session's messages oldest first. A session
// owned by another tenant is indistinguishable from a missing one.
func (s *Service) GetTranscript(sessionID string, tenantID uint, limit int) ([]model.Message, error) {
	if err := s.resolveOwned(sessionID, tenantID); err != nil {
		return nil, err
	}
	return s.messages.ListBySessionID(sessionID, tenantID, limit)
}

func (s *Service) ClearMessages(ctx context.Context, sessionID string, tenantID uint) error {
	if err := s.resolveOwned(sessionID, tenantID); err != nil {
		return err
	}
	if err := s.messages.DeleteBySessionID(sessionID, tenantID); err != nil {
		return err
	}
	s.invalidateHistory(ctx, sessionID)
	return nil
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string, tenantID uint) error {
	if err := s.resolveOwned(sessionID, tenantID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByIDAndTenantID(sessionID, tenantID); err != nil {
		return err
	}
	s.invalidateHistory(ctx, sessionID)
	return nil
}

func (s *Service) ListCurated(tenantID uint, kind string, unreadOnly bool) ([]model.CuratedMessage, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	switch kind {
	case "", string(classify.KindBlessing), string(classify.KindQuestion), string(classify.KindFreeform):
	default:
		return nil, ErrInvalidInput
	}
	return s.curated.ListByTenantID(tenantID, kind, unreadOnly)
}

func (s *Service) MarkCuratedRead(id, tenantID uint) error {
	if id == 0 || tenantID == 0 {
		return ErrInvalidInput
	}
	found, err := s.curated.MarkRead(id, tenantID)
	if err != nil {
		return err
	}
	if !found {
		return ErrCuratedNotFound
	}
	return nil
}

func (s *Service) resolveOwned(sessionID string, tenantID uint) error {
	if sessionID == "" || tenantID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.TenantID != tenantID {
		return ErrSessionNotFound
	}
	return nil
}

func (s *Service) invalidateHistory(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkDirty(ctx, sessionID); err != nil {
		log.Printf("mark history dirty failed: %v", err)
	}
	if err := s.cache.DeleteHistory(ctx, sessionID); err != nil {
		log.Printf("delete cached history failed: %v", err)
	}
}
