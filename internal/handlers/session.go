package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"titlechat/internal/conversation"
	"titlechat/internal/models"
	"titlechat/internal/session"
)

type wireMessage struct {
	Text    string   `json:"text,omitempty"`
	HTML    bool     `json:"html,omitempty"`
	Choices []string `json:"choices,omitempty"`
	DelayMS int64    `json:"delayMs,omitempty"`
	Region  string   `json:"region,omitempty"`
}

type sessionResponse struct {
	ID       string        `json:"id"`
	Messages []wireMessage `json:"messages"`
}

func toWire(out []conversation.OutboundMessage) []wireMessage {
	msgs := make([]wireMessage, 0, len(out))
	for _, o := range out {
		msgs = append(msgs, wireMessage{
			Text:    o.Text,
			HTML:    o.HTML,
			Choices: o.Choices,
			DelayMS: o.Delay.Milliseconds(),
			Region:  o.Region,
		})
	}
	return msgs
}

// ─── POST /session ────────────────────────────────────────────────────────────

func HandleCreateSession(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		id, out := mgr.Create()
		writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Messages: toWire(out)})
	}
}

// ─── POST /session/{id}/input ─────────────────────────────────────────────────

func HandleSessionInput(mgr *session.Manager, logger *zap.Logger) http.HandlerFunc {
	logger = logger.Named("session")
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var in models.SessionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		out, err := mgr.Submit(r.Context(), id, in)
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, conversation.ErrBusy):
			writeError(w, http.StatusConflict, "a message is already being processed")
		case errors.Is(err, conversation.ErrUnknownChoice):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			logger.Error("session: turn failed", zap.String("session", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, sessionResponse{ID: id, Messages: toWire(out)})
		}
	}
}
