package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultGeminiChatModel is the Gemini model used for answer generation
	DefaultGeminiChatModel = "gemini-2.5-flash"
	// DefaultGeminiEmbeddingModel is the Gemini model used for embeddings
	DefaultGeminiEmbeddingModel = "gemini-embedding-001"
	// DefaultGeminiEmbeddingDimensions is the output dimension of gemini-embedding-001
	DefaultGeminiEmbeddingDimensions = 3072
)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey              string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// GeminiClient provides embeddings and text generation via the Gemini API.
// It is safe for concurrent use.
type GeminiClient struct {
	client     *genai.Client
	chatModel  string
	embedModel string
	dimensions int
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultGeminiChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultGeminiEmbeddingModel
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultGeminiEmbeddingDimensions
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbeddingModel,
		dimensions: cfg.EmbeddingDimensions,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// EmbedText generates an embedding for the given text.
func (c *GeminiClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	em := c.client.EmbeddingModel(c.embedModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		if IsQuota(err) {
			return nil, fmt.Errorf("gemini embedding: %w: %v", ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data returned from gemini")
	}

	if len(res.Embedding.Values) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(res.Embedding.Values), c.dimensions)
	}

	return res.Embedding.Values, nil
}

// GenerateText runs one generation call and returns the concatenated text
// parts of the first candidate.
func (c *GeminiClient) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	if req.Prompt == "" {
		return "", ErrEmptyPrompt
	}

	model := c.client.GenerativeModel(c.chatModel)
	model.SetTemperature(req.Temperature)
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		if IsQuota(err) {
			return "", fmt.Errorf("gemini generation: %w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("gemini returned a non-text response")
	}

	return out.String(), nil
}
