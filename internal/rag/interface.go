// Package rag implements the retrieval-augmented generation core for the
// restaurant recommendation service: filter construction, vector and lexical
// retrieval, score fusion, and grounded answer synthesis.
// Concrete search backends (OpenSearch, Qdrant) satisfy the adapter
// interfaces defined here so the orchestrator never depends on a specific
// backend.
package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Restaurant holds the indexed attributes of a single restaurant document.
type Restaurant struct {
	// Name is the restaurant's display name.
	Name string `json:"name"`

	// Category is the cuisine category (e.g. "이탈리안", "한식").
	Category string `json:"category"`

	// Location is the human-readable address or neighbourhood.
	Location string `json:"location"`

	// Price is the typical price per person in won.
	Price int `json:"price"`

	// Rating is the average user rating (0.0–5.0). Zero means unrated.
	Rating float64 `json:"rating"`

	// Description is the free-text description of the restaurant.
	Description string `json:"description"`

	// Menu is the free-text summary of representative menu items.
	Menu string `json:"menu"`
}

// Hit is a single ranked result produced by a search adapter.
// Scores are backend-native: a vector similarity and a lexical relevance
// score are not comparable across adapters.
type Hit struct {
	// ID is the document id, unique within one query's result set.
	ID string `json:"id"`

	// Score is the backend-native relevance score.
	Score float64 `json:"score"`

	// Data holds the restaurant attributes returned with the hit.
	Data Restaurant `json:"data"`
}

// FusedHit is a single entry of the merged ranking produced by [Fuse].
// It exists only for the duration of one query.
type FusedHit struct {
	// ID is the document id carried over from the contributing hits.
	ID string `json:"id"`

	// FusedScore is the alpha-weighted sum of the contributing scores.
	FusedScore float64 `json:"fused_score"`

	// Data holds the restaurant attributes from the first contributing hit.
	Data Restaurant `json:"data"`
}

// Mode selects the retrieval strategy for one request.
type Mode string

const (
	// ModeVector retrieves by embedding similarity only.
	ModeVector Mode = "vector"
	// ModeText retrieves by lexical multi-field matching only.
	ModeText Mode = "text"
	// ModeHybrid retrieves from both adapters and fuses the rankings.
	// This is the default.
	ModeHybrid Mode = "hybrid"
)

// ParseMode converts a user-supplied search type string to a Mode.
// The empty string resolves to ModeHybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVector, ModeText, ModeHybrid:
		return Mode(s), nil
	case "":
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("rag: unknown search type %q — valid values: vector, text, hybrid", s)
	}
}

// VectorSearcher is the interface for k-nearest-neighbour search over the
// restaurant embedding index. Implementations must be safe to call from
// multiple goroutines.
type VectorSearcher interface {
	// SearchByVector returns the top-k hits for the query embedding,
	// restricted by the optional filter (nil means unfiltered).
	SearchByVector(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error)
}

// TextSearcher is the interface for lexical multi-field search over the
// restaurant index. Implementations must be safe to call from multiple
// goroutines.
type TextSearcher interface {
	// SearchByText returns the top-k hits for the query text,
	// restricted by the optional filter (nil means unfiltered).
	SearchByText(ctx context.Context, query string, k int, filter *Filter) ([]Hit, error)
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the minimal surface of an eino chat model used by the
// [Synthesizer]. Any model.BaseChatModel satisfies it; tests inject a fake.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}
