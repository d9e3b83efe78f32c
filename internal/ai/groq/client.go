// Package groq implements ai.Classifier on top of Groq's OpenAI-compatible
// chat completion endpoint.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/utils"
)

const (
	ProviderName = "groq"

	DefaultBaseURL = "https://api.groq.com/openai/v1/"
	DefaultModel   = "llama-3.3-70b-versatile"

	defaultMaxLogLength = 200
)

// Config configures the Groq classifier.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	// HTTPClient overrides the transport; nil means http.DefaultClient.
	HTTPClient   *http.Client
	MaxLogLength int
}

type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Classifier asks a Groq-hosted model for a verdict.
type Classifier struct {
	completions completionService
	model       string
	temperature float64
	logger      *zap.Logger
	maxLogLen   int
}

// New builds a classifier. An empty API key yields ai.ErrMissingCredential.
func New(cfg Config, log *zap.Logger) (*Classifier, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("groq: %w", ai.ErrMissingCredential)
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = ai.DefaultTemperature
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// One outbound call per classification; the caller falls back instead.
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)

	return &Classifier{
		completions: &client.Chat.Completions,
		model:       model,
		temperature: temperature,
		logger:      logger.WithCommonFields(log, ProviderName, model),
		maxLogLen:   maxLogLen,
	}, nil
}

func (c *Classifier) Provider() string { return ProviderName }

func (c *Classifier) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Classify sends a single chat completion request and parses its first choice.
func (c *Classifier) Classify(ctx context.Context, applicant eligibility.Applicant) (eligibility.Prediction, error) {
	prompt, err := ai.BuildPrompt(applicant)
	if err != nil {
		return eligibility.Prediction{}, err
	}

	c.logger.Debug("groq chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ai.SystemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		return eligibility.Prediction{}, transportError(err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return eligibility.Prediction{}, fmt.Errorf("groq: %w: no choices in completion", ai.ErrMalformedResponse)
	}

	content := completion.Choices[0].Message.Content

	c.logger.Debug("groq chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(content)),
		zap.String("response_preview", utils.TruncateForLog(content, c.maxLogLen)),
	)

	if strings.TrimSpace(content) == "" {
		return eligibility.Prediction{}, fmt.Errorf("groq: %w: empty completion content", ai.ErrMalformedResponse)
	}

	prediction, err := ai.ParsePrediction(content)
	if err != nil {
		return eligibility.Prediction{}, fmt.Errorf("groq: %w", err)
	}

	return prediction, nil
}

func transportError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("groq: %w: status %d", ai.ErrTransport, apiErr.StatusCode)
	}
	return fmt.Errorf("groq: %w: %v", ai.ErrTransport, err)
}
