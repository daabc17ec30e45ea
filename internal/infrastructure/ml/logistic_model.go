package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

const numericFeatureCount = 6

// artifact is the on-disk JSON layout of the versioned model. It carries the
// training-time preprocessing parameters alongside the regression weights,
// so inference never recomputes them.
type artifact struct {
	Version             string    `json:"version"`
	Intercept           float64   `json:"intercept"`
	NumericFeatures     []string  `json:"numeric_features"`
	Means               []float64 `json:"means"`
	Scales              []float64 `json:"scales"`
	NumericCoefficients []float64 `json:"numeric_coefficients"`
	MaritalVocabulary   []string  `json:"marital_vocabulary"`
	MaritalCoefficient  float64   `json:"marital_coefficient"`
	AgeGroupVocabulary  []string  `json:"age_group_vocabulary"`
	AgeGroupCoefficient float64   `json:"age_group_coefficient"`
}

// LogisticModel is the pre-trained default probability classifier: a
// logistic regression over the 8-field feature vector, with fixed-parameter
// standardization of the numerics and fixed-vocabulary ordinal encoding of
// the categoricals. It implements port.DefaultModel and is read-only after
// Load, so it is safe for concurrent use.
type LogisticModel struct {
	version             string
	intercept           float64
	means               [numericFeatureCount]float64
	scales              [numericFeatureCount]float64
	numericCoefficients [numericFeatureCount]float64
	maritalIndex        map[string]int
	ageGroupIndex       map[string]int
	maritalCoefficient  float64
	ageGroupCoefficient float64
}

// Load reads and validates the model artifact from disk. Any failure is a
// *service.ModelUnavailableError: the caller decides whether that is fatal.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &service.ModelUnavailableError{Cause: fmt.Errorf("reading artifact %s: %w", path, err)}
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, &service.ModelUnavailableError{Cause: fmt.Errorf("parsing artifact %s: %w", path, err)}
	}

	model, err := fromArtifact(art)
	if err != nil {
		return nil, &service.ModelUnavailableError{Cause: fmt.Errorf("validating artifact %s: %w", path, err)}
	}

	return model, nil
}

func fromArtifact(art artifact) (*LogisticModel, error) {
	if art.Version == "" {
		return nil, fmt.Errorf("artifact has no version")
	}
	if len(art.Means) != numericFeatureCount ||
		len(art.Scales) != numericFeatureCount ||
		len(art.NumericCoefficients) != numericFeatureCount {
		return nil, fmt.Errorf("artifact must carry exactly %d numeric means, scales, and coefficients", numericFeatureCount)
	}
	if len(art.MaritalVocabulary) == 0 || len(art.AgeGroupVocabulary) == 0 {
		return nil, fmt.Errorf("artifact categorical vocabularies must not be empty")
	}

	model := &LogisticModel{
		version:             art.Version,
		intercept:           art.Intercept,
		maritalCoefficient:  art.MaritalCoefficient,
		ageGroupCoefficient: art.AgeGroupCoefficient,
		maritalIndex:        make(map[string]int, len(art.MaritalVocabulary)),
		ageGroupIndex:       make(map[string]int, len(art.AgeGroupVocabulary)),
	}

	for i := 0; i < numericFeatureCount; i++ {
		if art.Scales[i] == 0 {
			return nil, fmt.Errorf("numeric scale %d must not be zero", i)
		}
		model.means[i] = art.Means[i]
		model.scales[i] = art.Scales[i]
		model.numericCoefficients[i] = art.NumericCoefficients[i]
	}

	for i, category := range art.MaritalVocabulary {
		model.maritalIndex[category] = i
	}
	for i, category := range art.AgeGroupVocabulary {
		model.ageGroupIndex[category] = i
	}

	return model, nil
}

// Predict returns the calibrated default probability for the feature vector,
// applying the artifact's training-time standardization and encoding.
func (m *LogisticModel) Predict(_ context.Context, features valueobject.FeatureVector) (float64, error) {
	maritalOrdinal, ok := m.maritalIndex[features.MaritalStatus]
	if !ok {
		return 0, fmt.Errorf("marital status %q not in artifact vocabulary", features.MaritalStatus)
	}
	ageOrdinal, ok := m.ageGroupIndex[features.AgeGroup]
	if !ok {
		return 0, fmt.Errorf("age group %q not in artifact vocabulary", features.AgeGroup)
	}

	z := m.intercept
	for i, value := range features.Numeric() {
		z += m.numericCoefficients[i] * (value - m.means[i]) / m.scales[i]
	}
	z += m.maritalCoefficient * float64(maritalOrdinal)
	z += m.ageGroupCoefficient * float64(ageOrdinal)

	return 1 / (1 + math.Exp(-z)), nil
}

// Version identifies the loaded artifact.
func (m *LogisticModel) Version() string {
	return m.version
}
