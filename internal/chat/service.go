package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/knowledgeassistant/internal/llm"
	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/rag"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
)

const (
	titleMaxLen = 50
	listLimit   = 100

	noContextSentinel = "No relevant documents found in the knowledge base."

	systemPrompt = `You are a knowledgeable assistant that helps users understand their documents.
When answering questions:
1. Use the provided context from the knowledge base to answer
2. If the context contains relevant information, cite the source by mentioning which document it came from
3. If no relevant context is found, acknowledge that and provide a general response
4. Be concise but thorough in your explanations
5. Format your response clearly with proper paragraphs`
)

// Service orchestrates conversations: it persists turns, retrieves context
// for each user message and produces the assistant reply.
type Service struct {
	convs       store.ConversationStore
	msgs        store.MessageStore
	retriever   *rag.Retriever
	gateway     llm.Gateway
	model       string
	temperature float64
}

func NewService(convs store.ConversationStore, msgs store.MessageStore, retriever *rag.Retriever, gw llm.Gateway, model string, temperature float64) *Service {
	return &Service{
		convs:       convs,
		msgs:        msgs,
		retriever:   retriever,
		gateway:     gw,
		model:       model,
		temperature: temperature,
	}
}

// Respond records the user turn, retrieves context, generates the assistant
// reply and records it. A failed model call degrades to an apology message;
// the user turn is never rolled back.
func (s *Service) Respond(ctx context.Context, conversationID, userText string) (*models.Message, error) {
	if _, err := s.convs.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	userMsg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        userText,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.msgs.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	contextBlock, sources := s.retriever.Retrieve(ctx, userText)
	if sources == nil {
		sources = []models.SourceCitation{}
	}

	responseText := s.generate(ctx, contextBlock, userText)

	assistantMsg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        responseText,
		Sources:        sources,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.msgs.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	s.updateConversationMeta(ctx, conversationID, userText)

	return assistantMsg, nil
}

func (s *Service) generate(ctx context.Context, contextBlock, userText string) string {
	if contextBlock == "" {
		contextBlock = noContextSentinel
	}

	userPrompt := fmt.Sprintf(`Context from knowledge base:
%s

User question: %s

Please provide a helpful response based on the context above. If you reference information from the documents, mention which source it came from.`,
		contextBlock, userText)

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		slog.Error("llm chat", "error", err)
		return fmt.Sprintf("I apologize, but I encountered an error processing your request. Please try again. Error: %v", err)
	}
	return resp.Content
}

// updateConversationMeta sets the title after the first exchange and bumps
// updated_at on every exchange. Failures here are logged, never surfaced.
func (s *Service) updateConversationMeta(ctx context.Context, conversationID, userText string) {
	now := time.Now().UTC()

	count, err := s.msgs.CountMessages(ctx, conversationID)
	if err != nil {
		slog.Warn("count messages", "conversation_id", conversationID, "error", err)
		count = 0
	}

	if count == 2 {
		if err := s.convs.SetTitle(ctx, conversationID, truncateTitle(userText), now); err != nil {
			slog.Warn("set conversation title", "conversation_id", conversationID, "error", err)
		}
		return
	}

	if err := s.convs.Touch(ctx, conversationID, now); err != nil {
		slog.Warn("touch conversation", "conversation_id", conversationID, "error", err)
	}
}

func (s *Service) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     models.DefaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.convs.InsertConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Service) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	return s.convs.ListConversations(ctx, listLimit)
}

func (s *Service) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return s.convs.GetConversation(ctx, id)
}

// DeleteConversation removes the conversation and cascades to its messages.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	if err := s.convs.DeleteConversation(ctx, id); err != nil {
		return err
	}
	if err := s.msgs.DeleteMessages(ctx, id); err != nil {
		slog.Error("delete conversation messages", "conversation_id", id, "error", err)
	}
	return nil
}

func (s *Service) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.msgs.ListMessages(ctx, conversationID)
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= titleMaxLen {
		return s
	}
	return string(runes[:titleMaxLen]) + "..."
}
