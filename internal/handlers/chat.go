package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"titlechat/internal/chat"
	"titlechat/internal/models"
)

// ─── POST /chat ───────────────────────────────────────────────────────────────

func HandleChat(svc chat.Replier, logger *zap.Logger) http.HandlerFunc {
	logger = logger.Named("chat")
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ChatResponse{Error: "userMessage is required"})
			return
		}

		reply, err := svc.Reply(r.Context(), req.UserMessage, req.State)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeJSON(w, http.StatusBadRequest, models.ChatResponse{Error: "userMessage is required"})
		case errors.Is(err, chat.ErrNotConfigured):
			writeJSON(w, http.StatusInternalServerError, models.ChatResponse{Error: chat.NotConfiguredMessage})
		case err != nil:
			logger.Error("chat: completion failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, models.ChatResponse{Error: "Error contacting OpenAI"})
		default:
			writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
		}
	}
}
