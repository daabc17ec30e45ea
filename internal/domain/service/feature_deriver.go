package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// BillRecord is one billing-cycle record from the loan book. A nil PaidDate
// means the bill is unpaid as of evaluation time.
type BillRecord struct {
	BilledAmount  decimal.Decimal
	PaidAmount    decimal.Decimal
	ScheduledDate time.Time
	PaidDate      *time.Time
}

// LoanSnapshot is the raw loan/customer state the feature deriver works from.
type LoanSnapshot struct {
	PrincipalAmount   decimal.Decimal
	OutstandingAmount decimal.Decimal
	DaysPastDue       int
	MaritalStatus     string
	DateOfBirth       time.Time
	Bills             []BillRecord
}

// maritalVocabulary is the fixed categorical vocabulary the model was
// trained on. Unrecognized values are rejected rather than mapped to a
// catch-all bucket, so bad upstream data fails loudly.
var maritalVocabulary = map[string]bool{
	"single":   true,
	"married":  true,
	"divorced": true,
	"widowed":  true,
}

// FeatureDeriver turns raw loan, customer, and bill-payment records into the
// fixed feature vector the default probability model expects.
type FeatureDeriver struct{}

// NewFeatureDeriver creates a new FeatureDeriver.
func NewFeatureDeriver() *FeatureDeriver {
	return &FeatureDeriver{}
}

// Derive computes the 8 model features from the snapshot, evaluated as of
// the given instant. Fails with InvalidInputError when the principal is not
// positive (it is a divisor downstream) or the marital status is outside the
// training vocabulary.
func (d *FeatureDeriver) Derive(snapshot LoanSnapshot, asOf time.Time) (valueobject.FeatureVector, error) {
	if !snapshot.PrincipalAmount.IsPositive() {
		return valueobject.FeatureVector{}, &InvalidInputError{
			Field:  "principal_amount",
			Reason: "must be positive",
		}
	}
	if snapshot.DaysPastDue < 0 {
		return valueobject.FeatureVector{}, &InvalidInputError{
			Field:  "days_past_due",
			Reason: "must not be negative",
		}
	}

	maritalStatus := strings.ToLower(strings.TrimSpace(snapshot.MaritalStatus))
	if !maritalVocabulary[maritalStatus] {
		return valueobject.FeatureVector{}, &InvalidInputError{
			Field:  "marital_status",
			Reason: "must be one of single, married, divorced, widowed",
		}
	}

	principal := snapshot.PrincipalAmount.InexactFloat64()
	outstanding := snapshot.OutstandingAmount.InexactFloat64()

	avgBillGap, lateRatio, paidRatio := deriveBillFeatures(snapshot.Bills)

	return valueobject.FeatureVector{
		PrincipalAmount:   principal,
		OutstandingAmount: outstanding,
		OutstandingRatio:  outstanding / principal,
		AvgBillGap:        avgBillGap,
		LateRatio:         lateRatio,
		PaidRatio:         paidRatio,
		MaritalStatus:     maritalStatus,
		AgeGroup:          ageGroup(ageInYears(snapshot.DateOfBirth, asOf)),
	}, nil
}

// deriveBillFeatures aggregates the bill history into the three payment
// behaviour features. All three are 0.0 when there is no history to judge.
func deriveBillFeatures(bills []BillRecord) (avgBillGap, lateRatio, paidRatio float64) {
	if len(bills) == 0 {
		return 0, 0, 0
	}

	var gapSum float64
	var gapCount int
	var lateCount int
	totalBilled := decimal.Zero
	totalPaid := decimal.Zero

	for _, bill := range bills {
		totalBilled = totalBilled.Add(bill.BilledAmount)
		totalPaid = totalPaid.Add(bill.PaidAmount)

		if bill.PaidDate == nil {
			// Unpaid as of evaluation counts as late.
			lateCount++
			continue
		}

		// Early payments produce negative gaps; they are kept, not clamped.
		gapDays := bill.PaidDate.Sub(bill.ScheduledDate).Hours() / 24
		gapSum += gapDays
		gapCount++

		if bill.PaidDate.After(bill.ScheduledDate) {
			lateCount++
		}
	}

	if gapCount > 0 {
		avgBillGap = gapSum / float64(gapCount)
	}
	lateRatio = float64(lateCount) / float64(len(bills))
	if totalBilled.IsPositive() {
		paidRatio, _ = totalPaid.Div(totalBilled).Float64()
	}

	return avgBillGap, lateRatio, paidRatio
}

// ageInYears computes the age in full calendar years at the given instant.
func ageInYears(dateOfBirth, asOf time.Time) int {
	years := asOf.Year() - dateOfBirth.Year()
	birthdayThisYear := time.Date(asOf.Year(), dateOfBirth.Month(), dateOfBirth.Day(),
		0, 0, 0, 0, asOf.Location())
	if asOf.Before(birthdayThisYear) {
		years--
	}
	return years
}

func ageGroup(age int) string {
	switch {
	case age <= 25:
		return valueobject.AgeGroupYoung
	case age <= 35:
		return valueobject.AgeGroupAdult
	case age <= 50:
		return valueobject.AgeGroupMature
	default:
		return valueobject.AgeGroupSenior
	}
}
