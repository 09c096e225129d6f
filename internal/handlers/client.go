package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"titlechat/internal/records"
)

// ─── POST /check-client ───────────────────────────────────────────────────────

// HandleCheckClient looks a phone or email up in the client-records file.
// The file is streamed fresh for every request.
func HandleCheckClient(store *records.FileStore, logger *zap.Logger) http.HandlerFunc {
	logger = logger.Named("check-client")
	return func(w http.ResponseWriter, r *http.Request) {
		var q records.Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		logger.Debug("check-client: lookup",
			zap.Bool("phone", q.Phone != ""), zap.Bool("email", q.Email != ""))

		rec, ok, err := store.Find(q)
		if err != nil {
			logger.Error("check-client: CSV read error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error reading client records.")
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, records.CheckClientResponse{Match: false})
			return
		}
		writeJSON(w, http.StatusOK, records.CheckClientResponse{Match: true, Data: &rec})
	}
}
