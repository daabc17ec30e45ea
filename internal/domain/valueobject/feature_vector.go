package valueobject

// Age group vocabulary, in the ordinal order the model artifact expects.
const (
	AgeGroupYoung  = "young"
	AgeGroupAdult  = "adult"
	AgeGroupMature = "mature"
	AgeGroupSenior = "senior"
)

// FeatureVector is the fixed 8-field input to the default probability model:
// 6 numeric features and 2 categoricals, named and ordered exactly as at
// training time. It is derived per request and never persisted directly.
type FeatureVector struct {
	PrincipalAmount   float64
	OutstandingAmount float64
	OutstandingRatio  float64
	AvgBillGap        float64
	LateRatio         float64
	PaidRatio         float64
	MaritalStatus     string
	AgeGroup          string
}

// Numeric returns the 6 numeric features in estimator order.
func (v FeatureVector) Numeric() [6]float64 {
	return [6]float64{
		v.PrincipalAmount,
		v.OutstandingAmount,
		v.OutstandingRatio,
		v.AvgBillGap,
		v.LateRatio,
		v.PaidRatio,
	}
}

// ToMap returns the named features for audit logging alongside the
// persisted assessment.
func (v FeatureVector) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"principal_amount":   v.PrincipalAmount,
		"outstanding_amount": v.OutstandingAmount,
		"outstanding_ratio":  v.OutstandingRatio,
		"avg_bill_gap":       v.AvgBillGap,
		"late_ratio":         v.LateRatio,
		"paid_ratio":         v.PaidRatio,
		"marital_status":     v.MaritalStatus,
		"age_group":          v.AgeGroup,
	}
}
