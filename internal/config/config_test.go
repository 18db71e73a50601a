package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: bedrock
  max_tokens: 2000
  temperature: 0.5
  bedrock:
    region: ap-northeast-2
    model_id: anthropic.claude-3-5-sonnet-20240620-v1:0
embedding:
  provider: bedrock
  model: amazon.titan-embed-text-v2:0
opensearch:
  host: search.internal
  port: 9200
  username: admin
  index: restaurants
  insecure: true
retrieval:
  vector_backend: opensearch
  alpha: 0.6
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"AWS_REGION", "BEDROCK_MODEL_ID",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
		"OPENSEARCH_HOST", "OPENSEARCH_PORT", "OPENSEARCH_USERNAME",
		"OPENSEARCH_INDEX", "OPENSEARCH_INSECURE",
		"VECTOR_BACKEND", "RETRIEVAL_ALPHA",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":      "bedrock",
		"MODEL_MAX_TOKENS":    "2000",
		"MODEL_TEMPERATURE":   "0.5",
		"AWS_REGION":          "ap-northeast-2",
		"BEDROCK_MODEL_ID":    "anthropic.claude-3-5-sonnet-20240620-v1:0",
		"EMBEDDING_PROVIDER":  "bedrock",
		"EMBEDDING_MODEL":     "amazon.titan-embed-text-v2:0",
		"OPENSEARCH_HOST":     "search.internal",
		"OPENSEARCH_PORT":     "9200",
		"OPENSEARCH_USERNAME": "admin",
		"OPENSEARCH_INDEX":    "restaurants",
		"OPENSEARCH_INSECURE": "true",
		"VECTOR_BACKEND":      "opensearch",
		"RETRIEVAL_ALPHA":     "0.6",
		"LOG_LEVEL":           "debug",
		"LOG_FORMAT":          "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

// TestLoad_QdrantSection verifies the full YAML-to-env round trip for the
// Qdrant backend, including the TLS flag that buildService reads as
// QDRANT_USE_TLS.
func TestLoad_QdrantSection(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
retrieval:
  vector_backend: qdrant
qdrant:
  host: qdrant.internal
  port: 6334
  collection: restaurants
  api_key: secret
  tls: true
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	envKeys := []string{
		"VECTOR_BACKEND", "QDRANT_HOST", "QDRANT_PORT",
		"QDRANT_COLLECTION", "QDRANT_API_KEY", "QDRANT_USE_TLS",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	if _, err := Load(cfgPath, log); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	checks := map[string]string{
		"VECTOR_BACKEND":    "qdrant",
		"QDRANT_HOST":       "qdrant.internal",
		"QDRANT_PORT":       "6334",
		"QDRANT_COLLECTION": "restaurants",
		"QDRANT_API_KEY":    "secret",
		"QDRANT_USE_TLS":    "true",
	}
	for k, want := range checks {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("MODEL_PROVIDER", "bedrock")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "bedrock" {
		t.Errorf("MODEL_PROVIDER: expected env override %q, got %q", "bedrock", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float32
		want string
	}{
		{0.0, ""},
		{0.5, "0.5"},
		{0.6, "0.6"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
