package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/ai/gemini"
	"github.com/spigell/loan-eligibility/internal/ai/groq"
	"github.com/spigell/loan-eligibility/internal/metrics"
	"github.com/spigell/loan-eligibility/internal/resolver"
	"github.com/spigell/loan-eligibility/internal/secrets"
)

// newClassifier builds the configured remote classifier. It returns nil
// without an error when no credential is configured.
func newClassifier(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Classifier, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", groq.ProviderName:
		apiKey, err := loadAPIKey("groq api key", cfg.Groq.APIKey, cfg.Groq.APIKeyFile)
		if err != nil || apiKey == "" {
			return nil, err
		}

		classifier, err := groq.New(groq.Config{
			APIKey:       apiKey,
			BaseURL:      cfg.Groq.BaseURL,
			Model:        cfg.Groq.Model,
			Temperature:  cfg.Groq.Temperature,
			MaxLogLength: cfg.MaxLogLength,
		}, logger)
		if err != nil {
			return nil, err
		}
		return classifier, nil

	case gemini.ProviderName:
		apiKey, err := loadAPIKey("gemini api key", cfg.Gemini.APIKey, cfg.Gemini.APIKeyFile)
		if err != nil || apiKey == "" {
			return nil, err
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.Temperature)
		if err != nil {
			return nil, err
		}
		return gemini.NewClassifier(generator, logger, cfg.MaxLogLength), nil
	}

	return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
}

// loadAPIKey returns an empty key when the secret is simply absent.
func loadAPIKey(name, value, file string) (string, error) {
	key, err := secrets.Load(secrets.Source{Name: name, Value: value, File: file})
	if errors.Is(err, secrets.ErrNotConfigured) {
		return "", nil
	}
	return key, err
}

func newResolver(ctx context.Context, cfg *AIConfig, m *metrics.Resolutions, logger *zap.Logger) (*resolver.Resolver, error) {
	classifier, err := newClassifier(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building %s classifier: %w", cfg.Provider, err)
	}

	return resolver.New(resolver.Options{
		Classifier:    classifier,
		Logger:        logger,
		Timeout:       cfg.Timeout,
		FallbackDelay: cfg.FallbackDelay,
		Metrics:       m,
	}), nil
}
