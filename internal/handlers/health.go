package handlers

import "net/http"

// ─── GET /health ──────────────────────────────────────────────────────────────

func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
