package service

import (
	"context"
	"fmt"

	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// ProbabilityEstimator wraps the pre-trained default model behind the
// SignalScore contract. Preprocessing lives inside the model artifact; this
// service only adapts the prediction into a tagged signal.
type ProbabilityEstimator struct {
	model port.DefaultModel
}

// NewProbabilityEstimator creates an estimator over the given model artifact.
func NewProbabilityEstimator(model port.DefaultModel) *ProbabilityEstimator {
	return &ProbabilityEstimator{model: model}
}

// Estimate returns the ml signal for the feature vector. Estimation failure
// is fatal for the ML signal, and therefore for the whole request.
func (e *ProbabilityEstimator) Estimate(ctx context.Context, features valueobject.FeatureVector) (valueobject.SignalScore, error) {
	probability, err := e.model.Predict(ctx, features)
	if err != nil {
		return valueobject.SignalScore{}, fmt.Errorf("default probability prediction failed: %w", err)
	}

	score, err := valueobject.NewSignalScore(valueobject.SignalSourceML, probability)
	if err != nil {
		return valueobject.SignalScore{}, fmt.Errorf("model returned out-of-range probability: %w", err)
	}

	return score, nil
}

// ModelVersion reports the version of the underlying artifact.
func (e *ProbabilityEstimator) ModelVersion() string {
	return e.model.Version()
}
