// Package llm wraps the hosted model providers behind small embedding and
// generation clients. Quota exhaustion is classified so callers can surface
// it separately from transient provider failures.
package llm

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyPrompt is returned when a generation prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrWrongDimensions is returned when an embedding does not match the configured dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrQuotaExceeded is returned when the provider reports quota or rate exhaustion
	ErrQuotaExceeded = errors.New("provider quota exceeded")
	// ErrNoAPIKey is returned when a provider client is constructed without a key
	ErrNoAPIKey = errors.New("provider api key not set")
)

// GenerationRequest describes one text generation call. SystemPrompt may be
// empty when the prompt itself carries the persona.
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
}

// IsQuota reports whether the error indicates provider quota or rate
// exhaustion, either via the wrapped sentinel or the provider's own shape.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 429 {
		return true
	}

	var oerr *openai.APIError
	if errors.As(err, &oerr) && oerr.HTTPStatusCode == 429 {
		return true
	}

	// "deadline exceeded" is a timeout, not quota, so bare "exceeded" is
	// deliberately not matched here.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "exhausted")
}
