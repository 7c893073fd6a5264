package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"remediation-agent/packages/config"

	"github.com/chainguard-dev/clog"
)

// ErrEmptyCompletion is returned when the model produced no text.
var ErrEmptyCompletion = errors.New("no content generated")

// Params are the sampling parameters of a single model call
type Params struct {
	MaxTokens     int32
	Temperature   float32
	TopK          int32
	TopP          float32
	StopSequences []string
}

// StopSequence ends a completion before the model starts a new human turn.
const StopSequence = "\n\nHuman:"

// AnalysisParams are used for issue analysis calls.
var AnalysisParams = Params{
	MaxTokens:     1000,
	Temperature:   0.5,
	TopK:          50,
	TopP:          0.95,
	StopSequences: []string{StopSequence},
}

// RemediationParams are used for remediation calls. They allow longer output
// because the whole file is returned.
var RemediationParams = Params{
	MaxTokens:     2000,
	Temperature:   0.7,
	TopK:          50,
	TopP:          0.95,
	StopSequences: []string{StopSequence},
}

// Model is a text completion backend
type Model interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// retryClassifier is implemented by backends that can tell transient errors apart.
type retryClassifier interface {
	IsRetryable(err error) bool
}

// Provider names accepted in ai.provider
const (
	ProviderGemini       = "gemini"
	ProviderVertex       = "vertex"
	ProviderGenerativeAI = "generative-ai"
	ProviderAnthropic    = "anthropic"
)

// NewModel creates the backend selected by the configuration, wrapped in the
// configured retry policy.
func NewModel(ctx context.Context, cfg *config.Config) (Model, error) {
	var (
		model Model
		err   error
	)

	switch cfg.AI.Provider {
	case ProviderGemini:
		model, err = NewGemini(ctx, cfg.AI.Model, cfg.Secrets.GeminiAPIKey)
	case ProviderVertex:
		model, err = NewVertex(ctx, cfg.AI.Model, cfg.Secrets.GCPProjectID, cfg.Secrets.GCPRegion)
	case ProviderGenerativeAI:
		model, err = NewGenerativeAI(ctx, cfg.AI.Model, cfg.Secrets.GeminiAPIKey)
	case ProviderAnthropic:
		model, err = NewAnthropic(cfg.AI.Model, cfg.Secrets.AnthropicAPIKey)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
	if err != nil {
		return nil, err
	}

	clog.FromContext(ctx).Info("Model backend ready", "provider", cfg.AI.Provider, "model", cfg.AI.Model, "maxRetries", cfg.AI.Retry.MaxRetries)

	return WithRetry(model, RetryConfig{
		MaxRetries:  cfg.AI.Retry.MaxRetries,
		BaseBackoff: cfg.AI.Retry.BaseBackoff,
		MaxBackoff:  cfg.AI.Retry.MaxBackoff,
		MaxJitter:   cfg.AI.Retry.MaxJitter,
	}), nil
}

// Close releases the client held by model, looking through the retry wrapper.
// Backends without resources to release are left alone.
func Close(model Model) error {
	if r, ok := model.(*retryingModel); ok {
		model = r.inner
	}
	if c, ok := model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
