// Package gemini generates recommendation text with the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/okian/skillnav/pkg/metrics"
)

const (
	defaultModel = "gemini-1.5-flash"
	collaborator = "gemini"
)

// contentGenerator is the part of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide prompt-based text generation.
type Generator struct {
	models contentGenerator
	model  string
	config *genai.GenerateContentConfig
}

// Settings tune sampling. Zero values fall back to the service defaults.
type Settings struct {
	Temperature     float64
	TopP            float64
	TopK            float64
	MaxOutputTokens int
}

// DefaultSettings returns the sampling used by the reports service.
func DefaultSettings() Settings {
	return Settings{Temperature: 1, TopP: 0.95, TopK: 64, MaxOutputTokens: 8192}
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, s Settings) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, model, s), nil
}

func newGenerator(models contentGenerator, model string, s Settings) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	def := DefaultSettings()
	if s.TopP <= 0 {
		s.TopP = def.TopP
	}
	if s.TopK <= 0 {
		s.TopK = def.TopK
	}
	if s.MaxOutputTokens <= 0 {
		s.MaxOutputTokens = def.MaxOutputTokens
	}
	return &Generator{
		models: models,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(s.Temperature)),
			TopP:             genai.Ptr(float32(s.TopP)),
			TopK:             genai.Ptr(float32(s.TopK)),
			MaxOutputTokens:  int32(s.MaxOutputTokens),
			ResponseMIMEType: "text/plain",
		},
	}
}

// Generate sends the prompt and returns the concatenated text parts.
// It makes a single attempt; callers bound it with ctx.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", ErrNotInitialized
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	metrics.RecordExternalCall(collaborator, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := collectText(resp)
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(strings.TrimRight(part.Text, "\n"))
		}
	}
	return strings.TrimSpace(builder.String())
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
