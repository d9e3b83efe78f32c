package ai

import (
	"context"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// Classifier asks a remote model for an eligibility verdict.
//
// Implementations perform at most one outbound call per Classify invocation and
// return errors wrapping ErrTransport or ErrMalformedResponse so callers can tell
// the failure kinds apart with KindOf.
type Classifier interface {
	Classify(ctx context.Context, applicant eligibility.Applicant) (eligibility.Prediction, error)
	Provider() string
	Model() string
}
