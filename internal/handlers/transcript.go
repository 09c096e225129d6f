package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"titlechat/internal/models"
)

const (
	defaultTranscriptLimit = 200
	maxTranscriptLimit     = 1000
)

// TranscriptReader reads stored session history. *database.DB satisfies it.
type TranscriptReader interface {
	GetSession(id string) (*models.Session, error)
	GetRecentMessages(sessionID string, limit int) ([]models.Message, error)
	GetAnswers(sessionID string) (string, error)
}

// ─── GET /session/{id}/transcript ─────────────────────────────────────────────

// HandleTranscript serves the newest messages of a stored session, oldest
// first. ?limit= caps the count.
func HandleTranscript(store TranscriptReader, logger *zap.Logger) http.HandlerFunc {
	logger = logger.Named("transcript")
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		limit := defaultTranscriptLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxTranscriptLimit)
		}

		s, err := store.GetSession(id)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			logger.Error("transcript: read session", zap.String("session", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		msgs, err := store.GetRecentMessages(id, limit)
		if err != nil {
			logger.Error("transcript: read messages", zap.String("session", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := models.Transcript{
			ID:        s.ID,
			Region:    s.Region,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			Messages:  make([]models.TranscriptLine, 0, len(msgs)),
		}
		for _, m := range msgs {
			out.Messages = append(out.Messages, models.TranscriptLine{Role: m.Role, Content: m.Content, At: m.CreatedAt})
		}

		dump, err := store.GetAnswers(id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			logger.Warn("transcript: read answers", zap.String("session", id), zap.Error(err))
		default:
			if err := json.Unmarshal([]byte(dump), &out.Answers); err != nil {
				logger.Warn("transcript: bad answers json", zap.String("session", id), zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, out)
	}
}
