package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alswn8268/ai-cii/internal/logging"
)

const (
	// DefaultAlpha is the hybrid fusion weight. Slightly vector-favoring:
	// semantic similarity matters more than keyword overlap for queries
	// like "분위기 좋은 파스타집".
	DefaultAlpha = 0.6

	// defaultSearchTimeout bounds each individual backend search call so a
	// hung backend fails the call instead of the whole process.
	defaultSearchTimeout = 10 * time.Second

	// oversample is the per-adapter candidate multiplier in hybrid mode.
	// Fetching 2k from each side gives the fusion step enough overlap to
	// produce a meaningful top-k.
	oversample = 2
)

// RetrievalRequest describes one retrieval. The HTTP boundary validates it
// before it reaches the core: Query non-empty, K >= 1, Lat/Lng both present
// or both absent.
type RetrievalRequest struct {
	// Query is the user's natural language query.
	Query string
	// Lat and Lng are the optional user coordinates.
	Lat *float64
	Lng *float64
	// Budget is the optional per-person budget in won.
	Budget *int
	// K is the number of results to return.
	K int
	// Mode selects vector, text, or hybrid retrieval ("" = hybrid).
	Mode Mode
}

// RetrieverConfig holds the tuning knobs for a Retriever.
type RetrieverConfig struct {
	// Alpha is the hybrid fusion weight in [0,1]. 0 means DefaultAlpha.
	Alpha float64
	// SearchTimeout bounds each backend search call. 0 means 10s.
	SearchTimeout time.Duration
}

// Retriever orchestrates one retrieval: it builds the filter once, dispatches
// to the configured adapters according to the requested mode, and fuses the
// rankings in hybrid mode. It holds no per-request state and is safe for
// concurrent use.
type Retriever struct {
	// embedder converts the query text to a dense vector.
	embedder Embedder
	// vector performs k-NN search over the embedding index.
	vector VectorSearcher
	// text performs lexical multi-field search.
	text TextSearcher
	// alpha is the hybrid fusion weight.
	alpha float64
	// searchTimeout bounds each backend search call.
	searchTimeout time.Duration
}

// NewRetriever constructs a Retriever from the given adapters.
// cfg may be nil for defaults.
func NewRetriever(embedder Embedder, vector VectorSearcher, text TextSearcher, cfg *RetrieverConfig) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if vector == nil {
		return nil, fmt.Errorf("rag: vector searcher must not be nil")
	}
	if text == nil {
		return nil, fmt.Errorf("rag: text searcher must not be nil")
	}
	if cfg == nil {
		cfg = &RetrieverConfig{}
	}
	alpha := cfg.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("rag: alpha must be in [0,1], got %g", alpha)
	}
	timeout := cfg.SearchTimeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &Retriever{
		embedder:      embedder,
		vector:        vector,
		text:          text,
		alpha:         alpha,
		searchTimeout: timeout,
	}, nil
}

// Retrieve returns at most req.K ranked hits for the request.
//
// Backend search failures are swallowed: the failing side degrades to an
// empty result list with a WARN log, favouring availability over
// completeness. An embedding failure propagates — there is no meaningful
// empty fallback for it. An empty return with a nil error means no matching
// restaurants, which is a valid outcome.
func (r *Retriever) Retrieve(ctx context.Context, req *RetrievalRequest) ([]Hit, error) {
	filter := BuildFilter(FilterParams{
		Lat:    req.Lat,
		Lng:    req.Lng,
		Budget: req.Budget,
	})

	switch req.Mode {
	case ModeVector:
		vec, err := r.embedQuery(ctx, req.Query)
		if err != nil {
			return nil, err
		}
		return r.vectorSearch(ctx, vec, req.K, filter), nil

	case ModeText:
		return r.textSearch(ctx, req.Query, req.K, filter), nil

	default: // hybrid
		vec, err := r.embedQuery(ctx, req.Query)
		if err != nil {
			return nil, err
		}

		// The two searches are independent; run them in parallel. Errors
		// never escape the closures — each side already degrades to empty.
		var vectorHits, textHits []Hit
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			vectorHits = r.vectorSearch(gctx, vec, oversample*req.K, filter)
			return nil
		})
		g.Go(func() error {
			textHits = r.textSearch(gctx, req.Query, oversample*req.K, filter)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("rag: hybrid search: %w", err)
		}

		fused := Fuse(vectorHits, textHits, r.alpha)
		if len(fused) > req.K {
			fused = fused[:req.K]
		}

		hits := make([]Hit, 0, len(fused))
		for _, f := range fused {
			hits = append(hits, Hit{ID: f.ID, Score: f.FusedScore, Data: f.Data})
		}
		return hits, nil
	}
}

// embedQuery converts the query text to its embedding vector.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("rag: embedder returned an empty vector for query")
	}
	return embeddings[0], nil
}

// vectorSearch runs a bounded k-NN search, degrading to empty on failure.
func (r *Retriever) vectorSearch(ctx context.Context, vec []float32, k int, filter *Filter) []Hit {
	callCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()

	hits, err := r.vector.SearchByVector(callCtx, vec, k, filter)
	if err != nil {
		logging.FromContext(ctx).Warn("rag: vector search failed, returning empty results",
			slog.Any("error", err),
		)
		return nil
	}
	return hits
}

// textSearch runs a bounded lexical search, degrading to empty on failure.
func (r *Retriever) textSearch(ctx context.Context, query string, k int, filter *Filter) []Hit {
	callCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()

	hits, err := r.text.SearchByText(callCtx, query, k, filter)
	if err != nil {
		logging.FromContext(ctx).Warn("rag: text search failed, returning empty results",
			slog.Any("error", err),
		)
		return nil
	}
	return hits
}
