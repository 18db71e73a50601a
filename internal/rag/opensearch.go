package rag

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

// OpenSearchConfig holds connection parameters for the OpenSearch cluster
// that stores the restaurant index.
type OpenSearchConfig struct {
	// Host is the cluster hostname (default: localhost).
	Host string

	// Port is the HTTPS port (default: 9200).
	Port int

	// Username and Password are the basic-auth credentials.
	Username string
	Password string

	// Index is the restaurant index name (default: restaurants).
	Index string

	// Insecure skips TLS certificate verification. Managed clusters often
	// sit behind self-signed certificates in dev environments.
	Insecure bool
}

// OpenSearchClient implements both VectorSearcher and TextSearcher against
// a single OpenSearch index: k-NN over the "embedding" field and multi_match
// over the text fields.
type OpenSearchClient struct {
	// client is the underlying OpenSearch API client.
	client *opensearchapi.Client

	// index is the restaurant index name.
	index string
}

// NewOpenSearchClient creates a ready-to-use OpenSearchClient.
func NewOpenSearchClient(cfg *OpenSearchConfig) (*OpenSearchClient, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 9200
	}
	if cfg.Index == "" {
		cfg.Index = "restaurants"
	}

	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port)},
			Username:  cfg.Username,
			Password:  cfg.Password,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, //nolint:gosec // operator opt-in for self-signed dev clusters
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch: failed to create client: %w", err)
	}

	return &OpenSearchClient{client: client, index: cfg.Index}, nil
}

// SearchByVector performs a k-NN search over the embedding field.
func (c *OpenSearchClient) SearchByVector(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error) {
	return c.search(ctx, buildVectorQuery(vector, k, filter))
}

// SearchByText performs a boosted multi-field keyword search.
func (c *OpenSearchClient) SearchByText(ctx context.Context, query string, k int, filter *Filter) ([]Hit, error) {
	return c.search(ctx, buildTextQuery(query, k, filter))
}

// Ping probes the cluster for readiness.
func (c *OpenSearchClient) Ping(ctx context.Context) error {
	if _, err := c.client.Info(ctx, nil); err != nil {
		return fmt.Errorf("opensearch: info request failed: %w", err)
	}
	return nil
}

// search executes one query body against the restaurant index and converts
// the raw hits into the adapter result type.
func (c *OpenSearchClient) search(ctx context.Context, body map[string]any) ([]Hit, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("opensearch: marshal query: %w", err)
	}

	resp, err := c.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{c.index},
		Body:    bytes.NewReader(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch: search failed: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var data Restaurant
		if len(h.Source) > 0 {
			if err := json.Unmarshal(h.Source, &data); err != nil {
				return nil, fmt.Errorf("opensearch: decode document %s: %w", h.ID, err)
			}
		}
		hits = append(hits, Hit{ID: h.ID, Score: float64(h.Score), Data: data})
	}
	return hits, nil
}

// buildVectorQuery constructs the k-NN search body. With a filter present
// the knn clause moves under a bool query so the predicate clauses apply as
// an ANDed filter context.
func buildVectorQuery(vector []float32, k int, filter *Filter) map[string]any {
	knn := map[string]any{
		"knn": map[string]any{
			"embedding": map[string]any{
				"vector": vector,
				"k":      k,
			},
		},
	}

	query := knn
	if clauses := filterClauses(filter); len(clauses) > 0 {
		query = map[string]any{
			"bool": map[string]any{
				"must":   []any{knn},
				"filter": clauses,
			},
		}
	}

	return map[string]any{
		"size":  k,
		"query": query,
	}
}

// buildTextQuery constructs the lexical search body. Field boosts weight the
// name highest, then the description; category and location participate
// unboosted.
func buildTextQuery(text string, k int, filter *Filter) map[string]any {
	match := map[string]any{
		"multi_match": map[string]any{
			"query":  text,
			"fields": []string{"name^3", "description^2", "category", "location"},
			"type":   "best_fields",
		},
	}

	query := match
	if clauses := filterClauses(filter); len(clauses) > 0 {
		query = map[string]any{
			"bool": map[string]any{
				"must":   []any{match},
				"filter": clauses,
			},
		}
	}

	return map[string]any{
		"size":  k,
		"query": query,
	}
}

// filterClauses translates a Filter into OpenSearch filter-context clauses.
// Returns nil for a nil filter.
func filterClauses(f *Filter) []map[string]any {
	if f == nil {
		return nil
	}

	var clauses []map[string]any

	if f.Geo != nil {
		clauses = append(clauses, map[string]any{
			"geo_distance": map[string]any{
				"distance": fmt.Sprintf("%gkm", f.Geo.RadiusKm),
				"location": map[string]any{
					"lat": f.Geo.Lat,
					"lon": f.Geo.Lng,
				},
			},
		})
	}

	if f.Price != nil {
		rng := map[string]any{}
		if f.Price.Min != nil {
			rng["gte"] = *f.Price.Min
		}
		if f.Price.Max != nil {
			rng["lte"] = *f.Price.Max
		}
		clauses = append(clauses, map[string]any{
			"range": map[string]any{"price": rng},
		})
	}

	if f.Category != "" {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"category": f.Category},
		})
	}

	return clauses
}
