package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/alswn8268/ai-cii/internal/embedder"
	"github.com/alswn8268/ai-cii/internal/provider"
	"github.com/alswn8268/ai-cii/internal/rag"
	"github.com/alswn8268/ai-cii/internal/server"
)

// buildService wires the full RAG stack from environment variables:
// embedder, search backends, chat model, retriever, and synthesizer.
// It returns the service, the readiness pingers for the backends in use,
// and a cleanup function releasing backend connections.
//
// The env vars are populated by config.Load before any command runs, so
// YAML config and real env vars both land here.
func buildService(ctx context.Context, log *slog.Logger) (*rag.Service, []server.Pinger, func(), error) {
	if err := embedder.ValidateForRetrieval(log); err != nil {
		return nil, nil, nil, err
	}
	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	// OpenSearch is always required: it serves text search in every
	// configuration, and vector search unless VECTOR_BACKEND=qdrant.
	osClient, err := rag.NewOpenSearchClient(&rag.OpenSearchConfig{
		Host:     envOrDefault("OPENSEARCH_HOST", "localhost"),
		Port:     envInt("OPENSEARCH_PORT", 9200),
		Username: os.Getenv("OPENSEARCH_USERNAME"),
		Password: os.Getenv("OPENSEARCH_PASSWORD"),
		Index:    envOrDefault("OPENSEARCH_INDEX", "restaurants"),
		Insecure: envBool("OPENSEARCH_INSECURE", false),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opensearch client: %w", err)
	}

	pingers := []server.Pinger{server.NewBackendPinger(osClient, "opensearch")}
	cleanup := func() {}

	var vector rag.VectorSearcher = osClient
	switch backend := envOrDefault("VECTOR_BACKEND", "opensearch"); backend {
	case "opensearch":
		// already wired
	case "qdrant":
		qd, err := rag.NewQdrantSearcher(&rag.QdrantConfig{
			Host:       envOrDefault("QDRANT_HOST", "localhost"),
			Port:       envInt("QDRANT_PORT", 6334),
			Collection: envOrDefault("QDRANT_COLLECTION", "restaurants"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     envBool("QDRANT_USE_TLS", false),
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("qdrant client: %w", err)
		}
		vector = qd
		pingers = append(pingers, server.NewBackendPinger(qd, "qdrant"))
		cleanup = func() { _ = qd.Close() }
	default:
		return nil, nil, nil, fmt.Errorf("unknown VECTOR_BACKEND %q — valid values: opensearch, qdrant", backend)
	}

	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	retriever, err := rag.NewRetriever(emb, vector, osClient, &rag.RetrieverConfig{
		Alpha: envFloat("RETRIEVAL_ALPHA", 0),
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	synthesizer, err := rag.NewSynthesizer(chatModel, nil)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	svc, err := rag.NewService(retriever, synthesizer)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, pingers, cleanup, nil
}

// envOrDefault returns the env var value or def when unset/empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt parses an integer env var, returning def when unset or invalid.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envFloat parses a float env var, returning def when unset or invalid.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// envBool parses a boolean env var, returning def when unset or invalid.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
