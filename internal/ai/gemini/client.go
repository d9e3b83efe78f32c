package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/spigell/loan-eligibility/internal/ai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	jsonMIMEType = "application/json"
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to send a system instruction and a
// single user prompt in JSON response mode.
type Generator struct {
	models      contentModels
	modelName   string
	temperature float32
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, temperature float64) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ai.ErrMissingCredential)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, temperature), nil
}

func newGenerator(models contentModels, model string, temperature float64) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if temperature <= 0 {
		temperature = ai.DefaultTemperature
	}

	return &Generator{models: models, modelName: model, temperature: float32(temperature)}
}

// GenerateJSON sends the prompt to Gemini and returns the text of the first candidate.
func (g *Generator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		CandidateCount:    1,
		ResponseMIMEType:  jsonMIMEType,
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini: %w: status %d %s", ai.ErrTransport, apiErr.Code, apiErr.Status)
		}
		return "", fmt.Errorf("gemini: %w: %v", ai.ErrTransport, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w: no candidates in response", ai.ErrMalformedResponse)
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", fmt.Errorf("gemini: %w: empty candidate", ai.ErrMalformedResponse)
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		builder.WriteString(part.Text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("gemini: %w: empty response text", ai.ErrMalformedResponse)
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
