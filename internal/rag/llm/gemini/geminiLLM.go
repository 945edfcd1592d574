package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/rag/llm"
	"github.com/getai/ragstore/pkg/logging"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logging.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logging.New("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, question string, contextBlock string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.ModelContext},
		},
	}
	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextBlock, question)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
	}

	result, err := c.doCall(ctx, userPrompt, contentConfig)
	if err != nil {
		if isQuotaExhausted(err) {
			log.Warn("Gemini quota exhausted, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			result, err = c.doCall(ctx, userPrompt, contentConfig)
		}
		if err != nil {
			log.Error("Error generating answer", "error", err)
			return "", fmt.Errorf("gemini generation failed: %w", err)
		}
	}
	return result.Text(), nil
}

func (c *llmClient) doCall(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), cfg)
}

func isQuotaExhausted(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
