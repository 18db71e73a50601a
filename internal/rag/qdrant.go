package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for a Qdrant-backed vector index.
// Qdrant is the alternative vector backend for deployments that keep the
// embedding index out of OpenSearch; lexical search stays on OpenSearch.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the restaurant collection name (default: restaurants).
	Collection string

	// APIKey is the optional API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantSearcher implements VectorSearcher backed by a Qdrant collection
// whose point payloads carry the restaurant attributes.
type QdrantSearcher struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// collection is the restaurant collection name.
	collection string
}

// NewQdrantSearcher creates a ready-to-use QdrantSearcher.
func NewQdrantSearcher(cfg *QdrantConfig) (*QdrantSearcher, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = "restaurants"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantSearcher{client: client, collection: cfg.Collection}, nil
}

// SearchByVector performs a filtered similarity search and returns the
// top-k results with their payloads decoded into Restaurant values.
func (s *QdrantSearcher) SearchByVector(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error) {
	limit := uint64(k)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         qdrantFilter(filter),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:    r.Id.GetUuid(),
			Score: float64(r.Score),
			Data:  restaurantFromPayload(r.Payload),
		})
	}
	return hits, nil
}

// Ping probes the Qdrant instance using its native HealthCheck RPC.
func (s *QdrantSearcher) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantSearcher) Close() error {
	return s.client.Close()
}

// qdrantFilter translates a Filter into Qdrant must-conditions.
// Returns nil for a nil or empty filter.
func qdrantFilter(f *Filter) *qdrant.Filter {
	if f == nil {
		return nil
	}

	var must []*qdrant.Condition

	if f.Geo != nil {
		// Qdrant geo radius is in meters.
		must = append(must, qdrant.NewGeoRadius("location", f.Geo.Lat, f.Geo.Lng, float32(f.Geo.RadiusKm*1000)))
	}

	if f.Price != nil {
		rng := &qdrant.Range{}
		if f.Price.Min != nil {
			v := float64(*f.Price.Min)
			rng.Gte = &v
		}
		if f.Price.Max != nil {
			v := float64(*f.Price.Max)
			rng.Lte = &v
		}
		must = append(must, qdrant.NewRange("price", rng))
	}

	if f.Category != "" {
		must = append(must, qdrant.NewMatch("category", f.Category))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// restaurantFromPayload decodes a Qdrant point payload into a Restaurant.
// Unknown keys are ignored; missing keys leave zero values.
func restaurantFromPayload(payload map[string]*qdrant.Value) Restaurant {
	var r Restaurant
	if payload == nil {
		return r
	}
	if v, ok := payload["name"]; ok {
		r.Name = v.GetStringValue()
	}
	if v, ok := payload["category"]; ok {
		r.Category = v.GetStringValue()
	}
	if v, ok := payload["location"]; ok {
		r.Location = v.GetStringValue()
	}
	if v, ok := payload["price"]; ok {
		r.Price = int(v.GetIntegerValue())
	}
	if v, ok := payload["rating"]; ok {
		r.Rating = v.GetDoubleValue()
	}
	if v, ok := payload["description"]; ok {
		r.Description = v.GetStringValue()
	}
	if v, ok := payload["menu"]; ok {
		r.Menu = v.GetStringValue()
	}
	return r
}
