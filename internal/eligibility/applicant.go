package eligibility

import (
	"fmt"
	"strconv"
	"strings"
)

// CreditBand is one of the four ordered credit score bands.
type CreditBand string

const (
	CreditPoor      CreditBand = "Poor (300-579)"
	CreditFair      CreditBand = "Fair (580-669)"
	CreditGood      CreditBand = "Good (670-739)"
	CreditExcellent CreditBand = "Excellent (740+)"
)

// CreditBands lists the bands from worst to best.
var CreditBands = []CreditBand{CreditPoor, CreditFair, CreditGood, CreditExcellent}

// Keyword returns the category word the band label is matched by.
func (b CreditBand) Keyword() string {
	label := strings.TrimSpace(string(b))
	if idx := strings.IndexAny(label, " ("); idx != -1 {
		return label[:idx]
	}
	return label
}

// Known reports whether the band is one of the canonical labels.
func (b CreditBand) Known() bool {
	for _, band := range CreditBands {
		if b == band {
			return true
		}
	}
	return false
}

// ParseCreditBand accepts a canonical label or a bare category name in any case.
func ParseCreditBand(s string) (CreditBand, error) {
	s = strings.TrimSpace(s)
	for _, band := range CreditBands {
		if strings.EqualFold(s, string(band)) || strings.EqualFold(s, band.Keyword()) {
			return band, nil
		}
	}
	return CreditBand(s), fmt.Errorf("unknown credit band %q", s)
}

type EmploymentType string

const (
	Salaried     EmploymentType = "Salaried"
	SelfEmployed EmploymentType = "Self-Employed"
)

func (e EmploymentType) Known() bool {
	return e == Salaried || e == SelfEmployed
}

// ParseEmploymentType accepts "Salaried", "Self-Employed" and the
// separator-free spellings ("selfemployed", "self_employed").
func ParseEmploymentType(s string) (EmploymentType, error) {
	switch normalizeToken(s) {
	case "salaried":
		return Salaried, nil
	case "selfemployed":
		return SelfEmployed, nil
	}
	return EmploymentType(strings.TrimSpace(s)), fmt.Errorf("unknown employment type %q", s)
}

type PropertyOwnership string

const (
	Owned  PropertyOwnership = "Owned"
	Rented PropertyOwnership = "Rented"
)

func (p PropertyOwnership) Known() bool {
	return p == Owned || p == Rented
}

func ParsePropertyOwnership(s string) (PropertyOwnership, error) {
	switch normalizeToken(s) {
	case "owned":
		return Owned, nil
	case "rented":
		return Rented, nil
	}
	return PropertyOwnership(strings.TrimSpace(s)), fmt.Errorf("unknown property ownership %q", s)
}

// LoanTerm is the repayment period in months.
type LoanTerm int

const (
	Term12 LoanTerm = 12
	Term24 LoanTerm = 24
	Term36 LoanTerm = 36
	Term60 LoanTerm = 60
)

var LoanTerms = []LoanTerm{Term12, Term24, Term36, Term60}

func (t LoanTerm) Known() bool {
	for _, term := range LoanTerms {
		if t == term {
			return true
		}
	}
	return false
}

func ParseLoanTerm(s string) (LoanTerm, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("loan term %q is not a number: %w", s, err)
	}
	term := LoanTerm(n)
	if !term.Known() {
		return term, fmt.Errorf("unsupported loan term %d months", n)
	}
	return term, nil
}

// Applicant is the financial profile of a single loan request. Monetary
// amounts are monthly except LoanAmount, which is the requested principal.
type Applicant struct {
	ApplicantIncome     float64           `json:"applicantIncome" mapstructure:"applicantIncome" validate:"finite,gte=0"`
	CoApplicantIncome   float64           `json:"coApplicantIncome" mapstructure:"coApplicantIncome" validate:"finite,gte=0"`
	LoanAmount          float64           `json:"loanAmount" mapstructure:"loanAmount" validate:"finite,gte=0"`
	LoanTerm            LoanTerm          `json:"loanTerm" mapstructure:"loanTerm" validate:"loan_term"`
	CreditScore         CreditBand        `json:"creditScore" mapstructure:"creditScore" validate:"credit_band"`
	EmploymentType      EmploymentType    `json:"employmentType" mapstructure:"employmentType" validate:"employment_type"`
	YearsEmployment     float64           `json:"yearsEmployment" mapstructure:"yearsEmployment" validate:"finite,gte=0"`
	ExistingLiabilities bool              `json:"existingLiabilities" mapstructure:"existingLiabilities"`
	PropertyOwnership   PropertyOwnership `json:"propertyOwnership" mapstructure:"propertyOwnership" validate:"property_ownership"`
}

// TotalIncome is the combined monthly income of applicant and co-applicant.
func (a Applicant) TotalIncome() float64 {
	return a.ApplicantIncome + a.CoApplicantIncome
}

// DefaultApplicant returns the demo profile a fresh form starts with.
func DefaultApplicant() Applicant {
	return Applicant{
		ApplicantIncome:     5500,
		CoApplicantIncome:   1200,
		LoanAmount:          150000,
		LoanTerm:            Term36,
		CreditScore:         CreditGood,
		EmploymentType:      Salaried,
		YearsEmployment:     4,
		ExistingLiabilities: false,
		PropertyOwnership:   Rented,
	}
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
