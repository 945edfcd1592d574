package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/customHttpClient"
	"github.com/getai/ragstore/internal/rag/embedding"
	"github.com/getai/ragstore/pkg/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logging.Logger
var once sync.Once
var embeddingClient *client
var dimension = int(config.EmbeddingDimension)

type client struct {
	openAi openai.Client
	model  string
}

func newOpenAIEmbedder(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is not set")
		return
	}
	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.PooledClient()),
	)
	embeddingClient = &client{
		openAi: c,
		model:  modelName,
	}
	logger.Debug("OpenAI embedding model name: " + modelName)
	logger.Info("OpenAI embedding client created")
}

func GetOpenAIEmbeddingClient(modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logging.New("openai_embedding")
		newOpenAIEmbedder(modelName, apikey)
	})

	//if init failed
	if embeddingClient == nil {
		return nil
	}
	return &client{openAi: embeddingClient.openAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding embeds texts in one call; the response is re-ordered by its
// index field so output position i always belongs to input i.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.doCall(ctx, chunks)
	if err != nil {
		if isRateLimited(err) {
			log.Warn("Rate limit hit, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, chunks)
		}
		if err != nil {
			log.Error("Error getting embeddings from OpenAI", "error", err)
			return nil, fmt.Errorf("openai embedding call failed: %w", err)
		}
	}

	if len(res.Data) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(chunks), len(res.Data))
	}

	vectors := make([][]float32, len(chunks))
	for _, item := range res.Data {
		v := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			v[i] = float32(f)
		}
		if len(v) != dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(v), dimension)
		}
		vectors[item.Index] = v
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, chunks []string) (*openai.CreateEmbeddingResponse, error) {
	return c.openAi.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model: openai.EmbeddingModel(c.model),
	})
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
