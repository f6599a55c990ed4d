package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIChatModel is the OpenAI model used for answer generation
	DefaultOpenAIChatModel = "gpt-4o-mini"
	// DefaultOpenAIEmbeddingModel is the OpenAI model used for embeddings
	DefaultOpenAIEmbeddingModel = string(openai.LargeEmbedding3)
	// DefaultOpenAIEmbeddingDimensions is the output dimension of text-embedding-3-large
	DefaultOpenAIEmbeddingDimensions = 3072
)

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey              string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// OpenAIClient provides embeddings and text generation via the OpenAI API.
// It is safe for concurrent use.
type OpenAIClient struct {
	client     *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel
	dimensions int
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultOpenAIChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultOpenAIEmbeddingModel
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultOpenAIEmbeddingDimensions
	}

	return &OpenAIClient{
		client:     openai.NewClient(cfg.APIKey),
		chatModel:  cfg.ChatModel,
		embedModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions: cfg.EmbeddingDimensions,
	}, nil
}

// EmbedText generates an embedding for the given text.
func (c *OpenAIClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embedModel,
	})
	if err != nil {
		if IsQuota(err) {
			return nil, fmt.Errorf("openai embedding: %w: %v", ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned from openai")
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), c.dimensions)
	}

	return embedding, nil
}

// GenerateText runs one chat completion and returns the first choice.
func (c *OpenAIClient) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	if req.Prompt == "" {
		return "", ErrEmptyPrompt
	}

	// The request serializer drops a zero temperature, which the API then
	// defaults to 1; send the smallest representable value instead.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		if IsQuota(err) {
			return "", fmt.Errorf("openai generation: %w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("openai generation request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
