package rag

import (
	"context"
	"fmt"
)

// ChatRequest describes one end-to-end chat turn. The HTTP boundary
// validates it before it reaches the service.
type ChatRequest struct {
	// Query is the user's natural language question.
	Query string
	// Lat and Lng are the optional user coordinates.
	Lat *float64
	Lng *float64
	// Budget is the optional per-person budget in won.
	Budget *int
	// K is the number of candidates to retrieve.
	K int
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	// Answer is the generated (or fallback) recommendation text.
	Answer string
	// Results are the ranked candidates the answer was grounded in.
	Results []Hit
}

// Service runs the full RAG flow: hybrid retrieval followed by grounded
// answer synthesis. It is the single entry point the chat endpoint uses.
type Service struct {
	retriever   *Retriever
	synthesizer *Synthesizer
}

// NewService wires a Retriever and a Synthesizer into a Service.
func NewService(retriever *Retriever, synthesizer *Synthesizer) (*Service, error) {
	if retriever == nil {
		return nil, fmt.Errorf("rag: retriever must not be nil")
	}
	if synthesizer == nil {
		return nil, fmt.Errorf("rag: synthesizer must not be nil")
	}
	return &Service{retriever: retriever, synthesizer: synthesizer}, nil
}

// Chat retrieves candidates in hybrid mode and synthesizes a grounded
// answer. An empty candidate set is not an error — the synthesizer returns
// its fixed fallback answer and no generation call is made.
func (s *Service) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	hits, err := s.retriever.Retrieve(ctx, &RetrievalRequest{
		Query:  req.Query,
		Lat:    req.Lat,
		Lng:    req.Lng,
		Budget: req.Budget,
		K:      req.K,
		Mode:   ModeHybrid,
	})
	if err != nil {
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, req.Query, hits, req.Lat, req.Lng, req.Budget)
	if err != nil {
		return nil, err
	}

	return &ChatResult{Answer: answer, Results: hits}, nil
}

// Retrieve exposes retrieval-only access for the search endpoint.
func (s *Service) Retrieve(ctx context.Context, req *RetrievalRequest) ([]Hit, error) {
	return s.retriever.Retrieve(ctx, req)
}
