package form

import (
	"errors"
	"math"
	"testing"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

func TestParseAndApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field  Field
		raw    string
		expect func(eligibility.Applicant) bool
	}{
		{FieldApplicantIncome, "7200.5", func(a eligibility.Applicant) bool { return a.ApplicantIncome == 7200.5 }},
		{FieldCoApplicantIncome, "", func(a eligibility.Applicant) bool { return a.CoApplicantIncome == 0 }},
		{FieldLoanAmount, "$250,000", func(a eligibility.Applicant) bool { return a.LoanAmount == 250000 }},
		{FieldLoanTerm, "60", func(a eligibility.Applicant) bool { return a.LoanTerm == eligibility.Term60 }},
		{FieldCreditScore, "excellent", func(a eligibility.Applicant) bool { return a.CreditScore == eligibility.CreditExcellent }},
		{FieldCreditScore, "Poor (300-579)", func(a eligibility.Applicant) bool { return a.CreditScore == eligibility.CreditPoor }},
		{FieldEmploymentType, "self_employed", func(a eligibility.Applicant) bool { return a.EmploymentType == eligibility.SelfEmployed }},
		{FieldYearsEmployment, "6.5", func(a eligibility.Applicant) bool { return a.YearsEmployment == 6.5 }},
		{FieldExistingLiabilities, "yes", func(a eligibility.Applicant) bool { return a.ExistingLiabilities }},
		{FieldExistingLiabilities, "false", func(a eligibility.Applicant) bool { return !a.ExistingLiabilities }},
		{FieldPropertyOwnership, "OWNED", func(a eligibility.Applicant) bool { return a.PropertyOwnership == eligibility.Owned }},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"="+tt.raw, func(t *testing.T) {
			t.Parallel()

			u, err := Parse(tt.field, tt.raw)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if u.Field() != tt.field {
				t.Fatalf("expected update for %q, got %q", tt.field, u.Field())
			}

			a, err := Apply(eligibility.DefaultApplicant(), u)
			if err != nil {
				t.Fatalf("unexpected apply error: %v", err)
			}
			if !tt.expect(a) {
				t.Fatalf("update %#v not reflected in %+v", u, a)
			}
			if err := eligibility.Validate(a); err != nil {
				t.Fatalf("expected a valid applicant, got %v", err)
			}
		})
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field Field
		raw   string
	}{
		{FieldApplicantIncome, "lots"},
		{FieldLoanTerm, "48"},
		{FieldLoanTerm, "three years"},
		{FieldCreditScore, "Superb"},
		{FieldEmploymentType, "Contractor"},
		{FieldExistingLiabilities, "maybe"},
		{FieldPropertyOwnership, "Leased"},
	}

	for _, tt := range tests {
		if _, err := Parse(tt.field, tt.raw); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("Parse(%q, %q): expected ErrInvalidValue, got %v", tt.field, tt.raw, err)
		}
	}

	if _, err := Parse("salary", "10"); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	original := eligibility.DefaultApplicant()

	updated, err := Apply(original, LoanAmount(999))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if original.LoanAmount != 150000 {
		t.Fatalf("input was modified: %+v", original)
	}
	if updated.LoanAmount != 999 {
		t.Fatalf("expected updated loan amount, got %v", updated.LoanAmount)
	}
}

func TestApplyRejectsOutOfDomainValues(t *testing.T) {
	t.Parallel()

	updates := []Update{
		ApplicantIncome(-1),
		CoApplicantIncome(math.NaN()),
		LoanAmount(math.Inf(1)),
		YearsEmployment(-0.5),
		LoanTerm(48),
		CreditScore("Superb"),
		EmploymentType("Freelance"),
		PropertyOwnership("Leased"),
		nil,
	}

	for _, u := range updates {
		a, err := Apply(eligibility.DefaultApplicant(), u)
		if !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("Apply(%#v): expected ErrInvalidValue, got %v", u, err)
		}
		if a != eligibility.DefaultApplicant() {
			t.Fatalf("Apply(%#v): rejected update changed the applicant", u)
		}
	}
}

func TestApplyAllStopsAtFirstError(t *testing.T) {
	a, err := ApplyAll(eligibility.DefaultApplicant(),
		ApplicantIncome(9000),
		LoanTerm(7),
		LoanAmount(1),
	)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if a.ApplicantIncome != 9000 || a.LoanAmount != 150000 {
		t.Fatalf("expected updates before the failure only, got %+v", a)
	}
}

func TestEveryFieldHasAnUpdate(t *testing.T) {
	samples := map[Field]string{
		FieldApplicantIncome:     "1",
		FieldCoApplicantIncome:   "1",
		FieldLoanAmount:          "1",
		FieldLoanTerm:            "12",
		FieldCreditScore:         "fair",
		FieldEmploymentType:      "salaried",
		FieldYearsEmployment:     "1",
		FieldExistingLiabilities: "no",
		FieldPropertyOwnership:   "rented",
	}

	for _, f := range Fields {
		raw, ok := samples[f]
		if !ok {
			t.Fatalf("no sample input for %q", f)
		}
		u, err := Parse(f, raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", f, err)
		}
		if _, err := Apply(eligibility.DefaultApplicant(), u); err != nil {
			t.Fatalf("Apply(%q): %v", f, err)
		}
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" LoanAmount ")
	if err != nil || f != FieldLoanAmount {
		t.Fatalf("expected %q, got %q (%v)", FieldLoanAmount, f, err)
	}
	if _, err := ParseField("salary"); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestDecode(t *testing.T) {
	a, err := Decode(map[string]any{
		"applicantincome":     "8200",
		"loanAmount":          90000,
		"loanTerm":            "24",
		"creditScore":         "excellent",
		"employmentType":      "Self-Employed",
		"existingLiabilities": "yes",
		"propertyOwnership":   "owned",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := eligibility.DefaultApplicant()
	expected.ApplicantIncome = 8200
	expected.LoanAmount = 90000
	expected.LoanTerm = eligibility.Term24
	expected.CreditScore = eligibility.CreditExcellent
	expected.EmploymentType = eligibility.SelfEmployed
	expected.ExistingLiabilities = true
	expected.PropertyOwnership = eligibility.Owned

	if a != expected {
		t.Fatalf("expected %+v, got %+v", expected, a)
	}
}

func TestDecodeDefaultsAndErrors(t *testing.T) {
	a, err := Decode(nil)
	if err != nil || a != eligibility.DefaultApplicant() {
		t.Fatalf("expected the default applicant, got %+v (%v)", a, err)
	}

	for name, values := range map[string]map[string]any{
		"unknown key":  {"salary": 10},
		"unknown band": {"creditScore": "Superb"},
		"bad term":     {"loanTerm": "forever"},
		"bad bool":     {"existingLiabilities": "perhaps"},
	} {
		if _, err := Decode(values); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
