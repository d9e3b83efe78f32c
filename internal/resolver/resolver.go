// Package resolver obtains an eligibility verdict from a remote classifier and
// falls back to the local heuristic whenever that is not possible.
package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/metrics"
	"github.com/spigell/loan-eligibility/internal/scoring"
	"github.com/spigell/loan-eligibility/internal/utils"
)

const (
	// DefaultTimeout bounds a single remote call.
	DefaultTimeout = 15 * time.Second
	// DefaultFallbackDelay keeps the loading state visible when no remote
	// classifier is configured.
	DefaultFallbackDelay = 1500 * time.Millisecond
)

// Source tells where a verdict came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Resolution is a verdict together with its provenance.
type Resolution struct {
	eligibility.Prediction
	Source  Source
	Failure ai.FailureKind
	// Provider and Model name the remote classifier that was attempted, if any.
	Provider string
	Model    string
	Elapsed  time.Duration
}

// Degraded reports whether the verdict was computed locally.
func (r Resolution) Degraded() bool {
	return r.Source == SourceFallback
}

type Options struct {
	// Classifier is nil when no credential is configured.
	Classifier    ai.Classifier
	Logger        *zap.Logger
	Timeout       time.Duration
	FallbackDelay time.Duration
	Metrics       *metrics.Resolutions
}

// Resolver holds no per-request state and is safe for concurrent use.
type Resolver struct {
	classifier    ai.Classifier
	logger        *zap.Logger
	timeout       time.Duration
	fallbackDelay time.Duration
	metrics       *metrics.Resolutions
}

func New(opts Options) *Resolver {
	log := logger.WithFields(opts.Logger)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if opts.Classifier == nil {
		log.Info("no remote classifier configured, verdicts will use local scoring")
	} else {
		log = logger.WithCommonFields(log, opts.Classifier.Provider(), opts.Classifier.Model())
	}

	return &Resolver{
		classifier:    opts.Classifier,
		logger:        log,
		timeout:       timeout,
		fallbackDelay: opts.FallbackDelay,
		metrics:       opts.Metrics,
	}
}

// Resolve always returns a valid verdict. The remote classifier is tried at
// most once; any failure is logged and answered by scoring.Score.
func (r *Resolver) Resolve(ctx context.Context, applicant eligibility.Applicant) Resolution {
	start := time.Now()

	if !applicant.CreditScore.Known() {
		r.logger.Warn("unrecognized credit band contributes nothing to the local score",
			zap.String("credit_score", string(applicant.CreditScore)),
		)
	}

	if r.classifier == nil {
		if err := utils.WaitFor(ctx, r.fallbackDelay); err != nil {
			r.logger.Debug("fallback delay cut short", zap.Error(err))
		}
		return r.fallback(applicant, ai.FailureMissingCredential, Resolution{}, start)
	}

	attempt := Resolution{
		Provider: r.classifier.Provider(),
		Model:    r.classifier.Model(),
	}

	prediction, err := r.classifyRemote(ctx, applicant)
	if err != nil {
		kind := ai.KindOf(err)
		r.logger.Warn("remote classification failed, using local scoring",
			zap.String(logger.FieldFailure, string(kind)),
			zap.Error(err),
		)
		return r.fallback(applicant, kind, attempt, start)
	}

	attempt.Prediction = prediction
	attempt.Source = SourceRemote
	attempt.Failure = ai.FailureNone
	attempt.Elapsed = time.Since(start)

	r.metrics.ObserveResolution(string(attempt.Source), string(attempt.Failure))
	r.logger.Debug("verdict resolved",
		append(logger.ResolutionFields(string(attempt.Source), ""),
			zap.String("prediction", string(prediction.Verdict)),
			zap.Float64("confidence", prediction.Confidence),
		)...,
	)

	return attempt
}

func (r *Resolver) classifyRemote(ctx context.Context, applicant eligibility.Applicant) (eligibility.Prediction, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	prediction, err := r.classifier.Classify(callCtx, applicant)
	if err == nil {
		// A verdict leaves the resolver only in the documented shape.
		if verr := eligibility.ValidatePrediction(prediction); verr != nil {
			err = fmt.Errorf("%w: %v", ai.ErrMalformedResponse, verr)
		}
	}

	outcome := "success"
	if err != nil {
		outcome = string(ai.KindOf(err))
	}
	r.metrics.ObserveRemoteCall(r.classifier.Provider(), outcome, time.Since(start))

	return prediction, err
}

func (r *Resolver) fallback(applicant eligibility.Applicant, kind ai.FailureKind, res Resolution, start time.Time) Resolution {
	res.Prediction = scoring.Score(applicant)
	res.Source = SourceFallback
	res.Failure = kind
	res.Elapsed = time.Since(start)

	r.metrics.ObserveResolution(string(res.Source), string(res.Failure))
	r.logger.Debug("verdict resolved",
		append(logger.ResolutionFields(string(res.Source), string(kind)),
			zap.String("prediction", string(res.Verdict)),
			zap.Float64("confidence", res.Confidence),
			zap.Any("contributions", scoring.Contributions(applicant)),
		)...,
	)

	return res
}
