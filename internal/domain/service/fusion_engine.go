package service

import (
	"fmt"
	"strings"

	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// Base fusion weights. Absent signals have their weight redistributed
// proportionally onto the present ones, so effective weights always sum to 1.0.
const (
	BaseWeightML     = 0.70
	BaseWeightVision = 0.15
	BaseWeightNLP    = 0.15
)

// FusionResult is the outcome of combining the available signals.
type FusionResult struct {
	FinalScore     float64
	RiskCategory   valueobject.RiskCategory
	Recommendation valueobject.Recommendation
	Explanation    string
	WeightsUsed    map[string]float64
}

// FusionEngine combines the ml, vision, and nlp signals into a final risk
// score, classifies it, and synthesizes the explanation. It is stateless and
// performs no retries; retry policy belongs to the collaborator call sites.
type FusionEngine struct{}

// NewFusionEngine creates a new FusionEngine.
func NewFusionEngine() *FusionEngine {
	return &FusionEngine{}
}

// Fuse combines the signals. The ml signal is required; vision and nlp are
// optional and contribute inverted (their raw scale is higher = safer,
// flipped to higher = riskier before combination).
func (e *FusionEngine) Fuse(ml *valueobject.SignalScore, vision, nlp *valueobject.SignalScore) (FusionResult, error) {
	if ml == nil {
		return FusionResult{}, &ScoringUnavailableError{
			Reason: "the default probability signal is required and was not produced",
		}
	}

	weights := map[string]float64{
		string(valueobject.SignalSourceML): BaseWeightML,
	}
	contributions := map[string]float64{
		string(valueobject.SignalSourceML): ml.Value(),
	}

	if vision != nil {
		weights[string(valueobject.SignalSourceVision)] = BaseWeightVision
		contributions[string(valueobject.SignalSourceVision)] = 1 - vision.Value()
	}
	if nlp != nil {
		weights[string(valueobject.SignalSourceNLP)] = BaseWeightNLP
		contributions[string(valueobject.SignalSourceNLP)] = 1 - nlp.Value()
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	var finalScore float64
	for source, w := range weights {
		weights[source] = w / totalWeight
		finalScore += weights[source] * contributions[source]
	}

	// Guard against floating drift at the band edges.
	if finalScore < 0 {
		finalScore = 0
	} else if finalScore > 1 {
		finalScore = 1
	}

	riskCategory := valueobject.RiskCategoryFromScore(finalScore)

	return FusionResult{
		FinalScore:     finalScore,
		RiskCategory:   riskCategory,
		Recommendation: valueobject.RecommendationFromCategory(riskCategory),
		Explanation:    buildExplanation(ml.Value(), vision, nlp, finalScore, riskCategory),
		WeightsUsed:    weights,
	}, nil
}

// buildExplanation synthesizes the human-readable summary, omitting the
// clause for any absent signal.
func buildExplanation(
	defaultProbability float64,
	vision, nlp *valueobject.SignalScore,
	finalScore float64,
	riskCategory valueobject.RiskCategory,
) string {
	parts := []string{
		fmt.Sprintf("Estimated default probability is %.1f%% based on payment history and loan metrics.",
			defaultProbability*100),
	}

	if vision != nil {
		if vision.Value() >= 0.5 {
			parts = append(parts, "Submitted photos show good asset condition.")
		} else {
			parts = append(parts, "Submitted photos show poor asset condition.")
		}
	}

	if nlp != nil {
		if nlp.Value() >= 0.5 {
			parts = append(parts, "Field agent notes read as positive.")
		} else {
			parts = append(parts, "Field agent notes read as negative.")
		}
	}

	parts = append(parts, fmt.Sprintf("Overall risk score: %.1f%%. Risk category: %s.",
		finalScore*100, riskCategory))

	return strings.Join(parts, " ")
}
