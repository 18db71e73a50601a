package embedder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// defaultTitanModel is the Titan embedding model used when none is configured.
	defaultTitanModel = "amazon.titan-embed-text-v2:0"

	// titanDimensions is the vector length produced by Titan v2.
	titanDimensions = 1024
)

// BedrockEmbedder implements rag.Embedder using Amazon Bedrock's Titan
// embedding models via the InvokeModel API. Credentials come from the
// standard AWS chain (env vars, shared config, instance role).
type BedrockEmbedder struct {
	// client is the Bedrock runtime client.
	client *bedrockruntime.Client
	// modelID is the Bedrock model identifier.
	modelID string
}

// BedrockConfig holds the settings for constructing a BedrockEmbedder.
type BedrockConfig struct {
	// Region is the AWS region hosting the Bedrock endpoint.
	Region string
	// ModelID is the Bedrock model identifier (default: amazon.titan-embed-text-v2:0).
	ModelID string
}

// NewBedrockEmbedder constructs a BedrockEmbedder, resolving AWS credentials
// from the default chain.
func NewBedrockEmbedder(ctx context.Context, cfg *BedrockConfig) (*BedrockEmbedder, error) {
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = defaultTitanModel
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock embedder: load aws config: %w", err)
	}

	return &BedrockEmbedder{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
	}, nil
}

// titanEmbedRequest is the JSON body for Titan embedding invocations.
type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

// titanEmbedResponse is the JSON body returned by Titan embedding invocations.
type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// Titan accepts one text per invocation, so the batch becomes sequential
// calls; retrieval embeds a single query per request, so batches stay small.
func (e *BedrockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		payload, err := json.Marshal(titanEmbedRequest{InputText: text})
		if err != nil {
			return nil, fmt.Errorf("bedrock embedder: marshal request: %w", err)
		}

		out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(e.modelID),
			ContentType: aws.String("application/json"),
			Accept:      aws.String("application/json"),
			Body:        payload,
		})
		if err != nil {
			return nil, fmt.Errorf("bedrock embedder: invoke %s: %w", e.modelID, err)
		}

		var result titanEmbedResponse
		if err := json.Unmarshal(out.Body, &result); err != nil {
			return nil, fmt.Errorf("bedrock embedder: decode response: %w", err)
		}
		if len(result.Embedding) == 0 {
			return nil, fmt.Errorf("bedrock embedder: empty embedding from %s", e.modelID)
		}

		embeddings = append(embeddings, result.Embedding)
	}
	return embeddings, nil
}
