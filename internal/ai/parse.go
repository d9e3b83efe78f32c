package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// ParsePrediction decodes a completion into a prediction. The content must be a
// single JSON object with exactly the prediction fields; a surrounding markdown
// code fence is tolerated.
func ParsePrediction(raw string) (eligibility.Prediction, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return eligibility.Prediction{}, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var prediction eligibility.Prediction
	if err := dec.Decode(&prediction); err != nil {
		return eligibility.Prediction{}, fmt.Errorf("%w: decode prediction: %v", ErrMalformedResponse, err)
	}

	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return eligibility.Prediction{}, fmt.Errorf("%w: trailing data after prediction", ErrMalformedResponse)
	}

	if err := eligibility.ValidatePrediction(prediction); err != nil {
		return eligibility.Prediction{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return prediction, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
