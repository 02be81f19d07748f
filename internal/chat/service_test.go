package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/knowledgeassistant/internal/llm"
	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/rag"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
	"github.com/nikhilbhutani/knowledgeassistant/internal/vectorstore"
)

// stubGateway returns a canned reply and records the last request.
type stubGateway struct {
	reply   string
	err     error
	lastReq llm.ChatRequest
}

func (g *stubGateway) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &llm.ChatResponse{Content: g.reply, Model: req.Model}, nil
}

func (g *stubGateway) Embed(ctx context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (g *stubGateway) Provider(name string) (llm.Provider, error) {
	return nil, errors.New("not implemented")
}

func newTestService(t *testing.T, gw llm.Gateway, index vectorstore.Index) (*Service, *store.Memory) {
	t.Helper()
	records := store.NewMemory()
	retriever := rag.NewRetriever(index, rag.DefaultTopK)
	svc := NewService(records, records, retriever, gw, "gpt-4.1-mini", 0.7)
	return svc, records
}

func createConversation(t *testing.T, svc *Service) *models.Conversation {
	t.Helper()
	conv, err := svc.CreateConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConversationTitle, conv.Title)
	return conv
}

func TestRespond_PersistsBothTurns(t *testing.T) {
	gw := &stubGateway{reply: "Here is your answer."}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()
	conv := createConversation(t, svc)

	msg, err := svc.Respond(ctx, conv.ID, "What is in my documents?")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, "Here is your answer.", msg.Content)

	msgs, err := svc.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "What is in my documents?", msgs[0].Content)
	assert.Empty(t, msgs[0].Sources)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.False(t, msgs[1].CreatedAt.Before(msgs[0].CreatedAt))
}

func TestRespond_NoContextUsesSentinel(t *testing.T) {
	gw := &stubGateway{reply: "I could not find anything relevant."}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	conv := createConversation(t, svc)

	msg, err := svc.Respond(context.Background(), conv.ID, "anything indexed?")
	require.NoError(t, err)
	assert.Empty(t, msg.Sources)

	require.Len(t, gw.lastReq.Messages, 2)
	assert.Equal(t, "system", gw.lastReq.Messages[0].Role)
	assert.Contains(t, gw.lastReq.Messages[1].Content, noContextSentinel)
	assert.Equal(t, "gpt-4.1-mini", gw.lastReq.Model)
	assert.Equal(t, 0.7, gw.lastReq.Temperature)
}

func TestRespond_WithContextAttachesSources(t *testing.T) {
	index := vectorstore.NewMemory()
	require.NoError(t, index.Add(context.Background(),
		[]string{"doc1_0"},
		[]string{"the onboarding checklist covers laptops and badges"},
		[]vectorstore.ChunkMetadata{{DocumentID: "doc1", Filename: "onboarding.md", ChunkIndex: 0}},
	))

	gw := &stubGateway{reply: "It covers laptops and badges."}
	svc, _ := newTestService(t, gw, index)
	conv := createConversation(t, svc)

	msg, err := svc.Respond(context.Background(), conv.ID, "what does the onboarding checklist cover")
	require.NoError(t, err)

	require.Len(t, msg.Sources, 1)
	assert.Equal(t, "onboarding.md", msg.Sources[0].Filename)
	assert.Contains(t, gw.lastReq.Messages[1].Content, "[Source 1 - onboarding.md]")
	assert.NotContains(t, gw.lastReq.Messages[1].Content, noContextSentinel)
}

func TestRespond_LLMFailureDegradesToApology(t *testing.T) {
	gw := &stubGateway{err: errors.New("quota exceeded")}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()
	conv := createConversation(t, svc)

	msg, err := svc.Respond(ctx, conv.ID, "hello")
	require.NoError(t, err)

	assert.Contains(t, msg.Content, "I apologize")
	assert.Contains(t, msg.Content, "quota exceeded")

	// The user turn survives the failure.
	msgs, err := svc.Messages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRespond_UnknownConversation(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())

	_, err := svc.Respond(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRespond_TitleSetOnFirstExchangeOnly(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()
	conv := createConversation(t, svc)

	_, err := svc.Respond(ctx, conv.ID, "short first question")
	require.NoError(t, err)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "short first question", got.Title)
	assert.True(t, got.UpdatedAt.After(conv.UpdatedAt) || got.UpdatedAt.Equal(conv.UpdatedAt))

	_, err = svc.Respond(ctx, conv.ID, "second question should not retitle")
	require.NoError(t, err)

	got, err = svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "short first question", got.Title)
}

func TestRespond_LongTitleTruncated(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()
	conv := createConversation(t, svc)

	question := strings.Repeat("q", 80)
	_, err := svc.Respond(ctx, conv.ID, question)
	require.NoError(t, err)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, question[:50]+"...", got.Title)
}

func TestDeleteConversation_CascadesToMessages(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, records := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()

	doomed := createConversation(t, svc)
	other := createConversation(t, svc)

	_, err := svc.Respond(ctx, doomed.ID, "doomed question")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, other.ID, "surviving question")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(ctx, doomed.ID))

	_, err = svc.GetConversation(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := records.CountMessages(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other conversation's messages are untouched.
	count, err = records.CountMessages(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteConversation_NotFound(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())

	err := svc.DeleteConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	gw := &stubGateway{reply: "ok"}
	svc, _ := newTestService(t, gw, vectorstore.NewMemory())
	ctx := context.Background()

	first := createConversation(t, svc)
	second := createConversation(t, svc)

	// Activity on the first conversation moves it to the front.
	_, err := svc.Respond(ctx, first.ID, "bump")
	require.NoError(t, err)

	convs, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].ID)
	assert.Equal(t, second.ID, convs[1].ID)
}
