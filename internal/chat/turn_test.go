package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestdesk/internal/ai"
	"guestdesk/internal/classify"
	"guestdesk/internal/knowledge"
	"guestdesk/internal/model"
)

type fakeSessionStore struct {
	sessions map[string]*model.Session
	creates  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionStore) Create(session *model.Session) error {
	f.creates++
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(id string) (*model.Session, error) {
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSessionStore) ListByTenantID(tenantID uint) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Touch(string) error { return nil }

func (f *fakeSessionStore) UpdateTitle(id, title string) error {
	if s, ok := f.sessions[id]; ok {
		s.Title = title
	}
	return nil
}

func (f *fakeSessionStore) DeleteByIDAndTenantID(id string, tenantID uint) error {
	if s, ok := f.sessions[id]; ok && s.TenantID == tenantID {
		delete(f.sessions, id)
	}
	return nil
}

type fakeMessageStore struct {
	messages []model.Message
	nextID   uint
}

func newFakeMessageStore() *fakeMessageStore { return &fakeMessageStore{nextID: 1} }

func (f *fakeMessageStore) Create(message *model.Message) error {
	message.ID = f.nextID
	f.nextID++
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) ListRecentBySessionID(sessionID string, tenantID uint, limit int) ([]model.Message, error) {
	all, _ := f.ListBySessionID(sessionID, tenantID, 0)
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (f *fakeMessageStore) ListBySessionID(sessionID string, tenantID uint, _ int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.messages {
		if m.SessionID == sessionID && m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteBySessionID(sessionID string, tenantID uint) error {
	var kept []model.Message
	for _, m := range f.messages {
		if m.SessionID != sessionID || m.TenantID != tenantID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeCuratedStore struct {
	list []model.CuratedMessage
}

func (f *fakeCuratedStore) ListByTenantID(tenantID uint, kind string, unreadOnly bool) ([]model.CuratedMessage, error) {
	var out []model.CuratedMessage
	for _, m := range f.list {
		if m.TenantID != tenantID {
			continue
		}
		if kind != "" && m.Kind != kind {
			continue
		}
		if unreadOnly && m.Read {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeCuratedStore) MarkRead(id, tenantID uint) (bool, error) {
	for i := range f.list {
		if f.list[i].ID == id && f.list[i].TenantID == tenantID {
			f.list[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

type fakePublisher struct {
	published []model.CuratedMessage
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, msg model.CuratedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type generatorCall struct {
	system  string
	history []ai.Message
	message string
}

type fakeGenerator struct {
	reply  string
	tokens int
	err    error
	calls  []generatorCall
}

func (f *fakeGenerator) Complete(_ context.Context, system string, history []ai.Message, message string) (*ai.Completion, error) {
	f.calls = append(f.calls, generatorCall{system: system, history: history, message: message})
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.reply, TokensUsed: f.tokens, FinishReason: "stop"}, nil
}

type fakeRetriever struct {
	result knowledge.Retrieval
}

func (f *fakeRetriever) Retrieve(uint, string) knowledge.Retrieval { return f.result }

type fixture struct {
	svc       *Service
	sessions  *fakeSessionStore
	messages  *fakeMessageStore
	curated   *fakeCuratedStore
	publisher *fakePublisher
	generator *fakeGenerator
	retriever *fakeRetriever
}

func newFixture() *fixture {
	f := &fixture{
		sessions:  newFakeSessionStore(),
		messages:  newFakeMessageStore(),
		curated:   &fakeCuratedStore{},
		publisher: &fakePublisher{},
		generator: &fakeGenerator{reply: "晚宴六点开始。", tokens: 30},
		retriever: &fakeRetriever{result: knowledge.Retrieval{Text: "晚宴六点开始", Mode: knowledge.ModeKeyword}},
	}
	f.svc = NewService(f.sessions, f.messages, f.curated, f.publisher, nil, f.retriever, f.generator, classify.NewKeyword(), "欢迎光临！", 10)
	return f
}

func TestHandleTurn_GreetingShortCircuit(t *testing.T) {
	f := newFixture()

	result, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "晚宴几点开始？"})
	require.NoError(t, err)
	assert.True(t, result.Greeting)
	assert.Equal(t, "欢迎光临！", result.Reply)
	assert.NotEmpty(t, result.SessionID)

	// no retrieval, no generation, no user message for the first turn
	assert.Empty(t, f.generator.calls)
	require.Len(t, f.messages.messages, 1)
	assert.Equal(t, model.RoleAssistant, f.messages.messages[0].Role)
}

func TestHandleTurn_GreetingEvenOnEmptyMessage(t *testing.T) {
	f := newFixture()

	result, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: ""})
	require.NoError(t, err)
	assert.True(t, result.Greeting)
	require.Len(t, f.messages.messages, 1)
}

func TestHandleTurn_SecondTurnGeneratesReply(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	result, err := f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "晚宴几点开始？"})
	require.NoError(t, err)
	assert.False(t, result.Greeting)
	assert.Equal(t, "晚宴六点开始。", result.Reply)
	assert.Equal(t, classify.KindQuestion, result.Classification)
	assert.Equal(t, 30, result.TokensUsed)

	// greeting + user + assistant
	require.Len(t, f.messages.messages, 3)
	assert.Equal(t, model.RoleUser, f.messages.messages[1].Role)
	assert.Equal(t, model.RoleAssistant, f.messages.messages[2].Role)
	assert.Equal(t, 30, f.messages.messages[2].TokensUsed)
}

func TestHandleTurn_FirstAnsweredMessageTitlesSession(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)
	assert.Empty(t, f.sessions.sessions[first.SessionID].Title, "greeting must not title the session")

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "晚宴几点开始？"})
	require.NoError(t, err)
	assert.Equal(t, "晚宴几点开始？", f.sessions.sessions[first.SessionID].Title)

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "停车场在哪里？"})
	require.NoError(t, err)
	assert.Equal(t, "晚宴几点开始？", f.sessions.sessions[first.SessionID].Title, "later turns must not retitle")
}

func TestHandleTurn_LongFirstMessageTitleTruncated(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	long := strings.Repeat("问", 40) + "？"
	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: long})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("问", 24), f.sessions.sessions[first.SessionID].Title)
}

func TestHandleTurn_HistorySnapshotExcludesCurrentMessage(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)
	sid := first.SessionID

	contents := []string{"第一问在哪里？", "第二问几点？", "第三问停车吗？"}
	for _, c := range contents {
		_, err := f.svc.HandleTurn(context.Background(), TurnInput{SessionID: sid, TenantID: 1, Content: c})
		require.NoError(t, err)
	}

	// greeting + 3 turns of user/assistant pairs, in creation order
	transcript, err := f.svc.GetTranscript(sid, 1, 0)
	require.NoError(t, err)
	require.Len(t, transcript, 7)
	wantRoles := []string{
		model.RoleAssistant,
		model.RoleUser, model.RoleAssistant,
		model.RoleUser, model.RoleAssistant,
		model.RoleUser, model.RoleAssistant,
	}
	for i, m := range transcript {
		assert.Equal(t, wantRoles[i], m.Role, "message %d", i)
	}

	// each generation call saw the history as it was BEFORE the current
	// user message was written
	require.Len(t, f.generator.calls, 3)
	for i, call := range f.generator.calls {
		assert.Equal(t, contents[i], call.message)
		for _, h := range call.history {
			assert.NotEqual(t, contents[i], h.Content, "current message leaked into history of turn %d", i)
		}
	}
}

func TestHandleTurn_GenerationFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	f.generator.err = ai.ErrUnavailable
	before := len(f.messages.messages)

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "晚宴几点？"})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Len(t, f.messages.messages, before)
	assert.Empty(t, f.publisher.published)
}

func TestHandleTurn_OwnershipConflict(t *testing.T) {
	f := newFixture()

	_, err := f.svc.HandleTurn(context.Background(), TurnInput{SessionID: "s1", TenantID: 1, Content: "hi"})
	require.NoError(t, err)
	creates := f.sessions.creates

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: "s1", TenantID: 2, Content: "hi"})
	assert.ErrorIs(t, err, ErrOwnershipConflict)
	assert.Equal(t, creates, f.sessions.creates, "conflict must not write")

	_, _, err = f.svc.GetOrCreate("s1", 2, "")
	assert.ErrorIs(t, err, ErrOwnershipConflict)
}

func TestHandleTurn_CuratedCopyPublished(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi", DisplayName: "老王"})
	require.NoError(t, err)
	sid := first.SessionID

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: sid, TenantID: 1, Content: "新婚快乐，百年好合！", DisplayName: "老王"})
	require.NoError(t, err)

	require.Len(t, f.publisher.published, 1)
	curated := f.publisher.published[0]
	assert.Equal(t, string(classify.KindBlessing), curated.Kind)
	assert.Equal(t, "新婚快乐，百年好合！", curated.Content)
	assert.Equal(t, "老王", curated.DisplayName)
	assert.Equal(t, sid, curated.SessionID)
}

func TestHandleTurn_FreeformNotCurated(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "我到了，在门口等你们"})
	require.NoError(t, err)
	assert.Empty(t, f.publisher.published)
}

func TestHandleTurn_PublishFailureDoesNotAbortTurn(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	result, err := f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "新婚快乐！"})
	require.NoError(t, err)
	assert.Equal(t, "晚宴六点开始。", result.Reply)
}

func TestHandleTurn_SystemPromptEmbedsRetrieval(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "晚宴几点？"})
	require.NoError(t, err)

	require.Len(t, f.generator.calls, 1)
	assert.Contains(t, f.generator.calls[0].system, "晚宴六点开始")
}

func TestHandleTurn_NoKnowledgeNotice(t *testing.T) {
	f := newFixture()
	f.retriever.result = knowledge.Retrieval{Mode: knowledge.ModeKeyword}

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	_, err = f.svc.HandleTurn(context.Background(), TurnInput{SessionID: first.SessionID, TenantID: 1, Content: "晚宴几点？"})
	require.NoError(t, err)

	require.Len(t, f.generator.calls, 1)
	assert.Contains(t, f.generator.calls[0].system, "No reference material")
}

func TestService_TranscriptHiddenAcrossTenants(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)

	_, err = f.svc.GetTranscript(first.SessionID, 2, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_ClearMessages(t *testing.T) {
	f := newFixture()

	first, err := f.svc.HandleTurn(context.Background(), TurnInput{TenantID: 1, Content: "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, f.messages.messages)

	require.NoError(t, f.svc.ClearMessages(context.Background(), first.SessionID, 1))
	transcript, err := f.svc.GetTranscript(first.SessionID, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestService_MarkCuratedRead(t *testing.T) {
	f := newFixture()
	f.curated.list = []model.CuratedMessage{{ID: 7, TenantID: 1, Kind: "blessing", Content: "新婚快乐"}}

	assert.ErrorIs(t, f.svc.MarkCuratedRead(7, 2), ErrCuratedNotFound)
	require.NoError(t, f.svc.MarkCuratedRead(7, 1))
	assert.True(t, f.curated.list[0].Read)
}

func TestService_ListCuratedValidatesKind(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ListCurated(1, "spam", false)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
