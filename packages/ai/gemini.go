package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Gemini generates text with the google.golang.org/genai SDK, against either
// the Gemini API or Vertex AI.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API backed model
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set in environment")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// NewVertex creates a Vertex AI backed model
func NewVertex(ctx context.Context, model, projectID, region string) (*Gemini, error) {
	if projectID == "" {
		return nil, errors.New("GCP_PROJECT_ID not set in environment")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate implements Model
func (g *Gemini) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	temperature := params.Temperature
	topK := float32(params.TopK)
	topP := params.TopP

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopK:            &topK,
		TopP:            &topP,
		MaxOutputTokens: params.MaxTokens,
		StopSequences:   params.StopSequences,
	}

	clog.FromContext(ctx).Debug("Sending request to Gemini", "model", g.model, "promptLength", len(prompt))

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if result == nil || result.Text() == "" {
		return "", ErrEmptyCompletion
	}
	return result.Text(), nil
}

// IsRetryable reports rate limit, quota and transient server errors
func (g *Gemini) IsRetryable(err error) bool {
	return isRetryableGoogleError(err)
}

func isRetryableGoogleError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Resource exhausted") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "Internal error")
}
