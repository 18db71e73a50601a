package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alswn8268/ai-cii/internal/rag"
	"github.com/alswn8268/ai-cii/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 0.0.0.0).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /ready.
	// If empty, /ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// MetricsRegistry is the Prometheus registry used for all server metrics
	// and served by GET /metrics. If nil, a fresh registry is created.
	MetricsRegistry *prometheus.Registry
}

// chatter is the interface handleChat calls to run one full RAG turn.
// *rag.Service satisfies it; tests inject a fake.
type chatter interface {
	Chat(ctx context.Context, req *rag.ChatRequest) (*rag.ChatResult, error)
}

// searcher is the interface handleSearch calls for retrieval-only queries.
// *rag.Service satisfies it; tests inject a fake.
type searcher interface {
	Retrieve(ctx context.Context, req *rag.RetrievalRequest) ([]rag.Hit, error)
}

// Server is the HTTP server that exposes the restaurant recommendation API.
type Server struct {
	// svc handles chat requests (retrieval + answer synthesis).
	svc chatter
	// search handles retrieval-only requests.
	search searcher
	// history persists answered queries; nil disables the history endpoint.
	history store.HistoryStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /ready.
	pingers []Pinger
	// metrics holds all Prometheus metrics owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/v1/chat.
type chatRequest struct {
	// Query is the user's natural language question.
	Query string `json:"query"`
	// Lat and Lng are the optional user coordinates.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
	// Budget is the optional per-person budget in won.
	Budget *int `json:"budget,omitempty"`
	// K is the number of candidates to retrieve (default: 5).
	K int `json:"k,omitempty"`
}

// searchResultSummary is one retrieved restaurant in a chat response.
type searchResultSummary struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Location string  `json:"location"`
	Price    int     `json:"price"`
	Rating   float64 `json:"rating"`
	Score    float64 `json:"score"`
}

// chatMetadata echoes the request parameters and retrieval details
// alongside the answer. Absent optional parameters serialize as null.
type chatMetadata struct {
	// Query is the user's question as received.
	Query string `json:"query"`
	// Lat and Lng are the user coordinates, when provided.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
	// Budget is the per-person budget in won, when provided.
	Budget *int `json:"budget"`
	// NumResults is how many candidates were retrieved.
	NumResults int `json:"num_results"`
	// K is the requested candidate count.
	K int `json:"k"`
}

// chatResponse is the JSON response for POST /api/v1/chat.
type chatResponse struct {
	// Answer is the generated recommendation text.
	Answer string `json:"answer"`
	// SearchResults are the candidates the answer was grounded in.
	SearchResults []searchResultSummary `json:"search_results"`
	// Metadata carries retrieval details.
	Metadata chatMetadata `json:"metadata"`
}

// searchMetadata echoes the search request parameters and the result count.
// Absent optional parameters serialize as null.
type searchMetadata struct {
	// Query is the search text as received.
	Query string `json:"query"`
	// Lat and Lng are the user coordinates, when provided.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
	// Budget is the per-person budget in won, when provided.
	Budget *int `json:"budget"`
	// NumResults is len(Results).
	NumResults int `json:"num_results"`
	// SearchType is the resolved retrieval mode.
	SearchType string `json:"search_type"`
}

// searchResponse is the JSON response for GET /api/v1/search.
type searchResponse struct {
	// Results are the ranked hits with full restaurant payloads.
	Results []rag.Hit `json:"results"`
	// Metadata echoes the request parameters and the result count.
	Metadata searchMetadata `json:"metadata"`
}

// historyResponse is the JSON response for GET /api/v1/history.
type historyResponse struct {
	// Entries are the most recent answered queries, newest-first.
	Entries []store.Entry `json:"entries"`
	// Count is len(Entries).
	Count int `json:"count"`
}

// errorResponse is the JSON error body for all 4xx/5xx responses.
type errorResponse struct {
	// Detail is the human-readable failure reason.
	Detail string `json:"detail"`
}
