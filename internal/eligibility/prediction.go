package eligibility

// Verdict is the binary outcome of an eligibility check.
type Verdict string

const (
	VerdictEligible    Verdict = "Eligible"
	VerdictNotEligible Verdict = "Not Eligible"
)

func (v Verdict) Known() bool {
	return v == VerdictEligible || v == VerdictNotEligible
}

// ReasonCount is the number of reasons every prediction carries.
const ReasonCount = 3

// Prediction is the verdict for one applicant. Confidence is a presentation
// value in [0, 1], not a calibrated probability.
type Prediction struct {
	Verdict    Verdict  `json:"prediction" validate:"verdict"`
	Confidence float64  `json:"confidence" validate:"finite,gte=0,lte=1"`
	Reasons    []string `json:"reasons" validate:"len=3,dive,required"`
}

func (p Prediction) Eligible() bool {
	return p.Verdict == VerdictEligible
}
