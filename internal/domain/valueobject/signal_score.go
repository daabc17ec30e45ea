package valueobject

import "fmt"

// SignalSource tags which of the three risk signals produced a score.
type SignalSource string

const (
	SignalSourceML     SignalSource = "ml"
	SignalSourceVision SignalSource = "vision"
	SignalSourceNLP    SignalSource = "nlp"
)

// SignalScore is one independently produced risk signal with its provenance.
//
// Polarity depends on the source and is deliberately not normalized here:
// an ml score is the probability of default (higher = riskier), while vision
// and nlp scores rate condition/sentiment (higher = safer). The fusion engine
// owns the inversion.
type SignalScore struct {
	value         float64
	source        SignalSource
	businessScore *float64
	homeScore     *float64
}

// NewSignalScore creates a score for the given source. The value must lie in [0,1].
func NewSignalScore(source SignalSource, value float64) (SignalScore, error) {
	if value < 0 || value > 1 {
		return SignalScore{}, fmt.Errorf("signal score must be in [0,1], got %f", value)
	}
	switch source {
	case SignalSourceML, SignalSourceVision, SignalSourceNLP:
	default:
		return SignalScore{}, fmt.Errorf("invalid signal source: %s", source)
	}
	return SignalScore{value: value, source: source}, nil
}

// NewVisionSignalScore creates a vision score with its per-photo breakdown.
// The combined value is the arithmetic mean of the sub-scores that are present.
func NewVisionSignalScore(businessScore, homeScore *float64) (SignalScore, error) {
	var sum float64
	var n int
	for _, sub := range []*float64{businessScore, homeScore} {
		if sub == nil {
			continue
		}
		if *sub < 0 || *sub > 1 {
			return SignalScore{}, fmt.Errorf("vision sub-score must be in [0,1], got %f", *sub)
		}
		sum += *sub
		n++
	}
	if n == 0 {
		return SignalScore{}, fmt.Errorf("vision score requires at least one sub-score")
	}
	return SignalScore{
		value:         sum / float64(n),
		source:        SignalSourceVision,
		businessScore: businessScore,
		homeScore:     homeScore,
	}, nil
}

// Value returns the score in [0,1].
func (s SignalScore) Value() float64 {
	return s.value
}

// Source returns the provenance tag.
func (s SignalScore) Source() SignalSource {
	return s.source
}

// BusinessScore returns the business-photo sub-score, if this is a vision
// signal with a business photo.
func (s SignalScore) BusinessScore() *float64 {
	return s.businessScore
}

// HomeScore returns the home-photo sub-score, if present.
func (s SignalScore) HomeScore() *float64 {
	return s.homeScore
}
