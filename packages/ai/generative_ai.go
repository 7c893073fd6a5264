package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	generativeai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenerativeAI generates text with the github.com/google/generative-ai-go SDK.
type GenerativeAI struct {
	client *generativeai.Client
	model  string
}

// NewGenerativeAI creates a model backed by the generative-ai-go client
func NewGenerativeAI(ctx context.Context, model, apiKey string) (*GenerativeAI, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set in environment")
	}

	client, err := generativeai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		clog.FromContext(ctx).Error("Failed to create Gemini client", "error", err)
		return nil, err
	}
	return &GenerativeAI{client: client, model: model}, nil
}

// Close releases the underlying client
func (g *GenerativeAI) Close() error {
	return g.client.Close()
}

// Generate implements Model
func (g *GenerativeAI) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	model := g.client.GenerativeModel(g.model)

	model.SetTemperature(params.Temperature)
	model.SetTopK(params.TopK)
	model.SetTopP(params.TopP)
	model.SetMaxOutputTokens(params.MaxTokens)
	model.StopSequences = params.StopSequences

	resp, err := model.GenerateContent(ctx, generativeai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(generativeai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// IsRetryable reports rate limit, quota and transient server errors
func (g *GenerativeAI) IsRetryable(err error) bool {
	return isRetryableGoogleError(err)
}
