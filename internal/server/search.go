package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/rag"
)

// handleSearch handles GET /api/v1/search: retrieval without answer
// generation. Query parameters:
//
//	query  — required search text
//	lat    — optional latitude (requires lng)
//	lng    — optional longitude (requires lat)
//	budget — optional per-person budget in won
//	k      — optional result count (default: 5)
//	search_type — optional retrieval mode: vector, text, hybrid (default: hybrid);
//	              "mode" is accepted as a shorthand alias
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	q := r.URL.Query()

	query := q.Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	lat, err := parseFloatParam(q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	lng, err := parseFloatParam(q.Get("lng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lng must be a number")
		return
	}
	if (lat == nil) != (lng == nil) {
		writeError(w, http.StatusBadRequest, "lat and lng must be provided together")
		return
	}

	budget, err := parseIntParam(q.Get("budget"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "budget must be an integer")
		return
	}

	k := defaultK
	if raw := q.Get("k"); raw != "" {
		k, err = strconv.Atoi(raw)
		if err != nil || k < 1 {
			writeError(w, http.StatusBadRequest, "k must be at least 1")
			return
		}
	}

	rawMode := q.Get("search_type")
	if rawMode == "" {
		rawMode = q.Get("mode")
	}
	mode, err := rag.ParseMode(rawMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "search_type must be one of: vector, text, hybrid")
		return
	}

	start := time.Now()
	hits, err := s.search.Retrieve(r.Context(), &rag.RetrievalRequest{
		Query:  query,
		Lat:    lat,
		Lng:    lng,
		Budget: budget,
		K:      k,
		Mode:   mode,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.searchRequestsTotal.WithLabelValues(string(mode), outcomeError).Inc()
		log.Error("search failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("검색 중 오류가 발생했습니다: %s", err))
		return
	}

	s.metrics.searchRequestsTotal.WithLabelValues(string(mode), outcomeOK).Inc()
	s.metrics.searchDurationSeconds.WithLabelValues(string(mode)).Observe(elapsed.Seconds())

	if hits == nil {
		hits = []rag.Hit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Results: hits,
		Metadata: searchMetadata{
			Query:      query,
			Lat:        lat,
			Lng:        lng,
			Budget:     budget,
			NumResults: len(hits),
			SearchType: string(mode),
		},
	})
}

// parseFloatParam parses an optional float query parameter.
// Returns nil for an empty value.
func parseFloatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseIntParam parses an optional integer query parameter.
// Returns nil for an empty value.
func parseIntParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
