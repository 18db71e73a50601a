package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/rag"
	"github.com/alswn8268/ai-cii/internal/store"
)

// defaultK is the number of candidates retrieved when the client does not
// specify one.
const defaultK = 5

// handleChat handles POST /api/v1/chat: full retrieval plus grounded answer
// generation. Retrieval backend failures degrade to the fallback answer
// inside the service; only embedding or generation failures surface as 500.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(w, http.StatusBadRequest, "lat and lng must be provided together")
		return
	}
	if req.K < 0 {
		writeError(w, http.StatusBadRequest, "k must be at least 1")
		return
	}
	if req.K == 0 {
		req.K = defaultK
	}

	start := time.Now()
	result, err := s.svc.Chat(r.Context(), &rag.ChatRequest{
		Query:  req.Query,
		Lat:    req.Lat,
		Lng:    req.Lng,
		Budget: req.Budget,
		K:      req.K,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.chatRequestsTotal.WithLabelValues(outcomeError).Inc()
		s.metrics.chatDurationSeconds.WithLabelValues(outcomeError).Observe(elapsed.Seconds())
		log.Error("chat failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("채팅 처리 중 오류가 발생했습니다: %s", err))
		return
	}

	s.metrics.chatRequestsTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.chatDurationSeconds.WithLabelValues(outcomeOK).Observe(elapsed.Seconds())

	s.recordHistory(r, &req, result)

	resp := chatResponse{
		Answer:        result.Answer,
		SearchResults: make([]searchResultSummary, 0, len(result.Results)),
		Metadata: chatMetadata{
			Query:      req.Query,
			Lat:        req.Lat,
			Lng:        req.Lng,
			Budget:     req.Budget,
			NumResults: len(result.Results),
			K:          req.K,
		},
	}
	for _, h := range result.Results {
		resp.SearchResults = append(resp.SearchResults, searchResultSummary{
			Name:     h.Data.Name,
			Category: h.Data.Category,
			Location: h.Data.Location,
			Price:    h.Data.Price,
			Rating:   h.Data.Rating,
			Score:    h.Score,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// recordHistory persists the answered query. History failures never fail the
// request; the answer has already been produced.
func (s *Server) recordHistory(r *http.Request, req *chatRequest, result *rag.ChatResult) {
	if s.history == nil {
		return
	}
	err := s.history.Append(r.Context(), store.Entry{
		Query:      req.Query,
		Answer:     result.Answer,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Budget:     req.Budget,
		NumResults: len(result.Results),
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("history append failed", slog.Any("error", err))
	}
}
