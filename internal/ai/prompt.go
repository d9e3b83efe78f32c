package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// SystemInstruction frames every remote request.
const SystemInstruction = "You are a financial risk assessment AI. You output strict JSON only."

// DefaultTemperature keeps completions close to deterministic.
const DefaultTemperature = 0.1

//go:embed prompt.md
var promptTemplate string

const applicantPlaceholder = "{{APPLICANT_JSON}}"

// BuildPrompt renders the user prompt for an applicant.
func BuildPrompt(applicant eligibility.Applicant) (string, error) {
	payload, err := json.MarshalIndent(applicant, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal applicant payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Applicant:\n" + applicantPlaceholder + "\n\nJSON Response:"
	}

	return strings.ReplaceAll(template, applicantPlaceholder, string(payload)), nil
}
