package valueobject

import "fmt"

// Recommendation is the lending recommendation derived from a risk category.
type Recommendation struct {
	value string
}

var (
	RecommendationApprove = Recommendation{value: "APPROVE"}
	RecommendationReview  = Recommendation{value: "REVIEW"}
	RecommendationReject  = Recommendation{value: "REJECT"}
)

// RecommendationFromString reconstructs a Recommendation from its string representation.
func RecommendationFromString(s string) (Recommendation, error) {
	switch s {
	case "APPROVE":
		return RecommendationApprove, nil
	case "REVIEW":
		return RecommendationReview, nil
	case "REJECT":
		return RecommendationReject, nil
	default:
		return Recommendation{}, fmt.Errorf("invalid recommendation: %s", s)
	}
}

// RecommendationFromCategory maps a risk category to its recommendation.
// LOW approves, MEDIUM and HIGH go to review, VERY_HIGH rejects.
func RecommendationFromCategory(category RiskCategory) Recommendation {
	switch category {
	case RiskCategoryLow:
		return RecommendationApprove
	case RiskCategoryVeryHigh:
		return RecommendationReject
	default:
		return RecommendationReview
	}
}

// String returns the string representation.
func (r Recommendation) String() string {
	return r.value
}

// IsZero returns true if the Recommendation has not been set.
func (r Recommendation) IsZero() bool {
	return r.value == ""
}
