package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/ai/gemini"
	"github.com/spigell/loan-eligibility/internal/ai/groq"
	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/form"
	"github.com/spigell/loan-eligibility/internal/resolver"
	"github.com/spigell/loan-eligibility/internal/scoring"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.AI.Provider != groq.ProviderName {
		t.Fatalf("expected groq provider, got %q", config.AI.Provider)
	}
	if config.AI.Timeout != resolver.DefaultTimeout || config.AI.FallbackDelay != resolver.DefaultFallbackDelay {
		t.Fatalf("unexpected timings %s / %s", config.AI.Timeout, config.AI.FallbackDelay)
	}
	if config.AI.Groq.Model != groq.DefaultModel || config.AI.Groq.BaseURL != groq.DefaultBaseURL {
		t.Fatalf("unexpected groq defaults %+v", config.AI.Groq)
	}
	if config.AI.Gemini.Model != gemini.DefaultModel {
		t.Fatalf("unexpected gemini model %q", config.AI.Gemini.Model)
	}
	if config.Server.Addr != ":8080" || config.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected server defaults %+v", config.Server)
	}
}

func TestDecodeConfigOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ai.provider", "gemini")
	v.Set("ai.timeout", "3s")
	v.Set("ai.gemini.api-key-file", "/run/secrets/gemini")
	v.Set("applicant", map[string]any{"loanamount": 90000, "creditscore": "poor"})

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.AI.Provider != "gemini" || config.AI.Timeout != 3*time.Second {
		t.Fatalf("unexpected ai config %+v", config.AI)
	}
	if config.AI.Gemini.APIKeyFile != "/run/secrets/gemini" {
		t.Fatalf("unexpected key file %q", config.AI.Gemini.APIKeyFile)
	}

	a, err := form.Decode(config.Applicant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.LoanAmount != 90000 || a.CreditScore != eligibility.CreditPoor {
		t.Fatalf("unexpected applicant %+v", a)
	}
}

func aiConfig() *AIConfig {
	return &AIConfig{
		Groq:   &GroqConfig{},
		Gemini: &GeminiConfig{},
	}
}

func TestNewClassifierWithoutCredential(t *testing.T) {
	for _, provider := range []string{"", "groq", "Gemini"} {
		cfg := aiConfig()
		cfg.Provider = provider

		classifier, err := newClassifier(context.Background(), cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", provider, err)
		}
		if classifier != nil {
			t.Fatalf("%q: expected no classifier, got %T", provider, classifier)
		}
	}
}

func TestNewClassifierGroq(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "groq")
	if err := os.WriteFile(keyFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	cfg := aiConfig()
	cfg.Groq.APIKeyFile = keyFile
	cfg.Groq.Model = "llama-test"

	classifier, err := newClassifier(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classifier == nil || classifier.Provider() != groq.ProviderName || classifier.Model() != "llama-test" {
		t.Fatalf("unexpected classifier %#v", classifier)
	}
}

func TestNewClassifierErrors(t *testing.T) {
	cfg := aiConfig()
	cfg.Provider = "openai"
	if _, err := newClassifier(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}

	cfg = aiConfig()
	cfg.Groq.APIKeyFile = filepath.Join(t.TempDir(), "missing")
	if _, err := newClassifier(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an unreadable key file")
	}
}

func TestNewResolverFallsBackWithoutCredential(t *testing.T) {
	cfg := aiConfig()

	res, err := newResolver(context.Background(), cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := res.Resolve(context.Background(), eligibility.DefaultApplicant())
	if result.Source != resolver.SourceFallback || result.Failure != ai.FailureMissingCredential {
		t.Fatalf("unexpected provenance %q/%q", result.Source, result.Failure)
	}
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("predict", pflag.ContinueOnError)
	for _, field := range form.Fields {
		flags.String(fieldFlags[field], "", "")
	}

	if err := flags.Parse([]string{"--credit-score=poor", "--loan-amount=250000", "--existing-liabilities=yes"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	a, err := applyFlags(eligibility.DefaultApplicant(), flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := eligibility.DefaultApplicant()
	expected.CreditScore = eligibility.CreditPoor
	expected.LoanAmount = 250000
	expected.ExistingLiabilities = true
	if a != expected {
		t.Fatalf("expected %+v, got %+v", expected, a)
	}

	bad := pflag.NewFlagSet("predict", pflag.ContinueOnError)
	bad.String(fieldFlags[form.FieldLoanTerm], "", "")
	_ = bad.Parse([]string{"--loan-term=48"})
	if _, err := applyFlags(eligibility.DefaultApplicant(), bad); err == nil {
		t.Fatal("expected an error for an unsupported loan term")
	}
}

func TestEveryFieldHasAFlag(t *testing.T) {
	for _, field := range form.Fields {
		if fieldFlags[field] == "" || fieldLabels[field] == "" {
			t.Fatalf("field %q has no flag or label", field)
		}
		if predictCmd.Flags().Lookup(fieldFlags[field]) == nil {
			t.Fatalf("flag for %q is not registered", field)
		}
		if currentValue(field, eligibility.DefaultApplicant()) == "" {
			t.Fatalf("field %q has no current value", field)
		}
	}
}

func TestWritePredictionJSON(t *testing.T) {
	a := eligibility.DefaultApplicant()
	res := resolver.Resolution{
		Prediction: scoring.Score(a),
		Source:     resolver.SourceFallback,
		Failure:    ai.FailureTransport,
	}

	var buf bytes.Buffer
	if err := writePrediction(&buf, OutputJSON, a, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out predictionOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Prediction != res.Verdict || out.Source != resolver.SourceFallback || out.Failure != "transport_failure" {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Applicant != a {
		t.Fatalf("expected the applicant to be echoed, got %+v", out.Applicant)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	if !bytes.Contains(buf.Bytes(), []byte("loan-eligibility version: unknown")) {
		t.Fatalf("unexpected version output %q", buf.String())
	}
}
