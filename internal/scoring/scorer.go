// Package scoring implements the deterministic eligibility heuristic used when
// no remote classifier is available or its answer cannot be used.
package scoring

import (
	"math"
	"strings"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// Threshold is the exclusive lower bound a risk score must exceed to be eligible.
const Threshold = 20

const (
	largeLoanAmount = 200000
	longTenureYears = 5
)

// Contribution is the effect of one rule that fired for an applicant.
type Contribution struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

var (
	eligibleReasons = [eligibility.ReasonCount]string{
		"Credit profile meets the required threshold for approval.",
		"Income-to-loan ratio supports repayment capacity.",
		"Employment history demonstrates sufficient stability.",
	}
	notEligibleReasons = [eligibility.ReasonCount]string{
		"Calculated risk score is below the approval threshold.",
		"Debt-to-income ratio may be too high for the requested amount.",
		"Credit factors indicate elevated repayment risk.",
	}
)

// Contributions returns the rules that fired for the applicant, in evaluation order.
func Contributions(a eligibility.Applicant) []Contribution {
	var out []Contribution
	add := func(rule string, points int) {
		out = append(out, Contribution{Rule: rule, Points: points})
	}

	if rule, points, ok := creditContribution(a.CreditScore); ok {
		add(rule, points)
	}

	// Highest bucket only.
	switch income := a.TotalIncome(); {
	case income > 8000:
		add("income above 8000", 30)
	case income > 5000:
		add("income above 5000", 20)
	case income > 3000:
		add("income above 3000", 10)
	}

	if a.LoanAmount > largeLoanAmount {
		add("loan above 200000", -20)
	}
	if a.ExistingLiabilities {
		add("existing liabilities", -10)
	}
	if a.EmploymentType == eligibility.SelfEmployed {
		add("self-employed", -5)
	}
	if a.YearsEmployment > longTenureYears {
		add("more than 5 years employed", 10)
	}

	return out
}

// creditContribution matches the band by category word so that labels with or
// without the numeric range score the same. Unrecognized bands contribute nothing.
func creditContribution(band eligibility.CreditBand) (string, int, bool) {
	label := string(band)
	switch {
	case strings.Contains(label, "Excellent"):
		return "excellent credit", 40, true
	case strings.Contains(label, "Good"):
		return "good credit", 30, true
	case strings.Contains(label, "Fair"):
		return "fair credit", 10, true
	case strings.Contains(label, "Poor"):
		return "poor credit", -50, true
	}
	return "", 0, false
}

// RiskScore sums the contributions of every rule that fired.
func RiskScore(a eligibility.Applicant) int {
	score := 0
	for _, c := range Contributions(a) {
		score += c.Points
	}
	return score
}

// Score maps an applicant to a prediction. It is total and deterministic.
func Score(a eligibility.Applicant) eligibility.Prediction {
	return FromRiskScore(RiskScore(a))
}

// FromRiskScore turns a risk score into a verdict, confidence and reasons.
func FromRiskScore(score int) eligibility.Prediction {
	if score > Threshold {
		return eligibility.Prediction{
			Verdict:    eligibility.VerdictEligible,
			Confidence: math.Min(0.75+float64(score)/200, 0.99),
			Reasons:    append([]string(nil), eligibleReasons[:]...),
		}
	}

	return eligibility.Prediction{
		Verdict:    eligibility.VerdictNotEligible,
		Confidence: math.Min(0.70+math.Abs(float64(score))/100, 0.95),
		Reasons:    append([]string(nil), notEligibleReasons[:]...),
	}
}
