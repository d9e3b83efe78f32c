package gemini

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/utils"
)

const ProviderName = "gemini"

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Classifier asks Gemini for an eligibility verdict.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewClassifier(generator contentGenerator, log *zap.Logger, maxLogLength int) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Classifier{
		generator: generator,
		logger:    logger.WithCommonFields(log, ProviderName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (c *Classifier) Provider() string { return ProviderName }

func (c *Classifier) Model() string { return c.generator.Model() }

func (c *Classifier) Classify(ctx context.Context, applicant eligibility.Applicant) (eligibility.Prediction, error) {
	prompt, err := ai.BuildPrompt(applicant)
	if err != nil {
		return eligibility.Prediction{}, err
	}

	c.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateJSON(ctx, ai.SystemInstruction, prompt)
	if err != nil {
		return eligibility.Prediction{}, err
	}

	c.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	prediction, err := ai.ParsePrediction(raw)
	if err != nil {
		return eligibility.Prediction{}, fmt.Errorf("gemini: %w", err)
	}

	return prediction, nil
}
