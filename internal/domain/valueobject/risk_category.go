package valueobject

import "fmt"

// RiskCategory is an immutable value object classifying a final risk score.
type RiskCategory struct {
	value string
}

var (
	RiskCategoryLow      = RiskCategory{value: "LOW"}
	RiskCategoryMedium   = RiskCategory{value: "MEDIUM"}
	RiskCategoryHigh     = RiskCategory{value: "HIGH"}
	RiskCategoryVeryHigh = RiskCategory{value: "VERY_HIGH"}
)

// RiskCategoryFromString reconstructs a RiskCategory from its string representation.
func RiskCategoryFromString(s string) (RiskCategory, error) {
	switch s {
	case "LOW":
		return RiskCategoryLow, nil
	case "MEDIUM":
		return RiskCategoryMedium, nil
	case "HIGH":
		return RiskCategoryHigh, nil
	case "VERY_HIGH":
		return RiskCategoryVeryHigh, nil
	default:
		return RiskCategory{}, fmt.Errorf("invalid risk category: %s", s)
	}
}

// RiskCategoryFromScore derives the category from a final score in [0,1].
// Bands are inclusive on the lower edge: a score of exactly 0.3 is MEDIUM,
// 0.5 is HIGH, 0.7 is VERY_HIGH.
func RiskCategoryFromScore(score float64) RiskCategory {
	switch {
	case score >= 0.7:
		return RiskCategoryVeryHigh
	case score >= 0.5:
		return RiskCategoryHigh
	case score >= 0.3:
		return RiskCategoryMedium
	default:
		return RiskCategoryLow
	}
}

// String returns the string representation.
func (r RiskCategory) String() string {
	return r.value
}

// IsZero returns true if the RiskCategory has not been set.
func (r RiskCategory) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskCategory.
func (r RiskCategory) Equal(other RiskCategory) bool {
	return r.value == other.value
}
