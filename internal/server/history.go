package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/store"
)

// defaultHistoryLimit is the number of entries returned by GET /api/v1/history
// when the client does not specify one.
const defaultHistoryLimit = 20

// maxHistoryLimit caps the entry count a single request may ask for.
const maxHistoryLimit = 100

// handleHistory handles GET /api/v1/history?n=20, returning the most recent
// answered queries newest-first. Responds 503 when history is disabled.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	n := defaultHistoryLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "n must be at least 1")
			return
		}
		n = v
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}

	entries, err := s.history.Recent(r.Context(), n)
	if err != nil {
		logging.FromContext(r.Context()).Error("history read failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Count: len(entries)})
}
