package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Provider names accepted by Provider and EmbeddingProvider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	// Model provider selection. Both embedding and generation default to
	// the same provider; embeddings can be pinned independently so the
	// stored vector generation survives a chat-model switch.
	Provider          string `envconfig:"PROVIDER" default:"gemini"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER"`

	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY"`
	GeminiChatModel      string `envconfig:"GEMINI_CHAT_MODEL" default:"gemini-2.5-flash"`
	GeminiEmbeddingModel string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIChatModel      string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-large"`

	// EmbeddingDimensions must match the vector columns in storage.
	EmbeddingDimensions int `envconfig:"EMBEDDING_DIMENSIONS" default:"3072"`

	// Retrieval knobs for the ask pipeline.
	RetrievalChunks   int  `envconfig:"RETRIEVAL_CHUNKS" default:"3"`
	RetrievalVerified int  `envconfig:"RETRIEVAL_VERIFIED" default:"2"`
	SelfEvalEnabled   bool `envconfig:"SELF_EVAL" default:"true"`

	// Ingestion worker pacing.
	EmbedBatchSize          int `envconfig:"EMBED_BATCH_SIZE" default:"100"`
	EmbedRequestsPerMinute  int `envconfig:"EMBED_RPM" default:"10"`
	WorkerPollIntervalSecs  int `envconfig:"WORKER_POLL_INTERVAL_SECS" default:"5"`
	MaxChunkChars           int `envconfig:"MAX_CHUNK_CHARS" default:"2000"`
	TranscriptWindowSeconds int `envconfig:"TRANSCRIPT_WINDOW_SECONDS" default:"30"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STUDYHALL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate fails fast on configuration the server cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}

	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}

	if ep := c.ResolvedEmbeddingProvider(); ep != ProviderGemini && ep != ProviderOpenAI {
		return fmt.Errorf("unknown embedding provider: %s", ep)
	}

	if c.ProviderKey(c.Provider) == "" {
		return fmt.Errorf("api key for provider %s is required", c.Provider)
	}

	if c.ProviderKey(c.ResolvedEmbeddingProvider()) == "" {
		return fmt.Errorf("api key for embedding provider %s is required", c.ResolvedEmbeddingProvider())
	}

	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive")
	}

	if c.EmbedRequestsPerMinute <= 0 {
		return fmt.Errorf("embed requests per minute must be positive")
	}

	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("embed batch size must be positive")
	}

	return nil
}

// ResolvedEmbeddingProvider returns the embedding provider, defaulting to
// the chat provider when not pinned.
func (c *Config) ResolvedEmbeddingProvider() string {
	if c.EmbeddingProvider != "" {
		return c.EmbeddingProvider
	}
	return c.Provider
}

// ProviderKey returns the API key configured for the named provider.
func (c *Config) ProviderKey(provider string) string {
	switch provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	}
	return ""
}

func (c *Config) HasJWT() bool {
	return c.JWTSecret != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
