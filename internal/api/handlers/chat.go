package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikhilbhutani/knowledgeassistant/internal/chat"
	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
)

type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type chatResponse struct {
	Message *models.Message         `json:"message"`
	Sources []models.SourceCitation `json:"sources"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ConversationID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversation_id and message are required"})
		return
	}

	msg, err := h.svc.Respond(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sources := msg.Sources
	if sources == nil {
		sources = []models.SourceCitation{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: msg, Sources: sources})
}
