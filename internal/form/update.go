// Package form turns raw user input into a valid eligibility.Applicant. Every
// edit is a typed Update so a field can never receive a value of the wrong kind.
package form

import (
	"errors"
	"fmt"
	"math"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// Field names one editable applicant attribute. Values match the JSON keys.
type Field string

const (
	FieldApplicantIncome     Field = "applicantIncome"
	FieldCoApplicantIncome   Field = "coApplicantIncome"
	FieldLoanAmount          Field = "loanAmount"
	FieldLoanTerm            Field = "loanTerm"
	FieldCreditScore         Field = "creditScore"
	FieldEmploymentType      Field = "employmentType"
	FieldYearsEmployment     Field = "yearsEmployment"
	FieldExistingLiabilities Field = "existingLiabilities"
	FieldPropertyOwnership   Field = "propertyOwnership"
)

// Fields lists every field in form order.
var Fields = []Field{
	FieldApplicantIncome,
	FieldCoApplicantIncome,
	FieldLoanAmount,
	FieldLoanTerm,
	FieldCreditScore,
	FieldEmploymentType,
	FieldYearsEmployment,
	FieldExistingLiabilities,
	FieldPropertyOwnership,
}

// Numeric reports whether the field holds a free-form number.
func (f Field) Numeric() bool {
	switch f {
	case FieldApplicantIncome, FieldCoApplicantIncome, FieldLoanAmount, FieldYearsEmployment:
		return true
	}
	return false
}

func (f Field) Known() bool {
	for _, field := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ErrInvalidValue is wrapped by every rejected update.
var ErrInvalidValue = errors.New("invalid field value")

// Update is a single field edit. The set of implementations is closed.
type Update interface {
	Field() Field
	isUpdate()
}

type (
	ApplicantIncome     float64
	CoApplicantIncome   float64
	LoanAmount          float64
	LoanTerm            eligibility.LoanTerm
	CreditScore         eligibility.CreditBand
	EmploymentType      eligibility.EmploymentType
	YearsEmployment     float64
	ExistingLiabilities bool
	PropertyOwnership   eligibility.PropertyOwnership
)

func (ApplicantIncome) Field() Field     { return FieldApplicantIncome }
func (CoApplicantIncome) Field() Field   { return FieldCoApplicantIncome }
func (LoanAmount) Field() Field          { return FieldLoanAmount }
func (LoanTerm) Field() Field            { return FieldLoanTerm }
func (CreditScore) Field() Field         { return FieldCreditScore }
func (EmploymentType) Field() Field      { return FieldEmploymentType }
func (YearsEmployment) Field() Field     { return FieldYearsEmployment }
func (ExistingLiabilities) Field() Field { return FieldExistingLiabilities }
func (PropertyOwnership) Field() Field   { return FieldPropertyOwnership }

func (ApplicantIncome) isUpdate()     {}
func (CoApplicantIncome) isUpdate()   {}
func (LoanAmount) isUpdate()          {}
func (LoanTerm) isUpdate()            {}
func (CreditScore) isUpdate()         {}
func (EmploymentType) isUpdate()      {}
func (YearsEmployment) isUpdate()     {}
func (ExistingLiabilities) isUpdate() {}
func (PropertyOwnership) isUpdate()   {}

// Apply returns a copy of a with u applied. The input is never modified.
func Apply(a eligibility.Applicant, u Update) (eligibility.Applicant, error) {
	switch v := u.(type) {
	case ApplicantIncome:
		if err := checkAmount(FieldApplicantIncome, float64(v)); err != nil {
			return a, err
		}
		a.ApplicantIncome = float64(v)
	case CoApplicantIncome:
		if err := checkAmount(FieldCoApplicantIncome, float64(v)); err != nil {
			return a, err
		}
		a.CoApplicantIncome = float64(v)
	case LoanAmount:
		if err := checkAmount(FieldLoanAmount, float64(v)); err != nil {
			return a, err
		}
		a.LoanAmount = float64(v)
	case LoanTerm:
		if !eligibility.LoanTerm(v).Known() {
			return a, fmt.Errorf("%s: %w: unsupported term %d", FieldLoanTerm, ErrInvalidValue, int(v))
		}
		a.LoanTerm = eligibility.LoanTerm(v)
	case CreditScore:
		if !eligibility.CreditBand(v).Known() {
			return a, fmt.Errorf("%s: %w: unknown band %q", FieldCreditScore, ErrInvalidValue, string(v))
		}
		a.CreditScore = eligibility.CreditBand(v)
	case EmploymentType:
		if !eligibility.EmploymentType(v).Known() {
			return a, fmt.Errorf("%s: %w: unknown type %q", FieldEmploymentType, ErrInvalidValue, string(v))
		}
		a.EmploymentType = eligibility.EmploymentType(v)
	case YearsEmployment:
		if err := checkAmount(FieldYearsEmployment, float64(v)); err != nil {
			return a, err
		}
		a.YearsEmployment = float64(v)
	case ExistingLiabilities:
		a.ExistingLiabilities = bool(v)
	case PropertyOwnership:
		if !eligibility.PropertyOwnership(v).Known() {
			return a, fmt.Errorf("%s: %w: unknown ownership %q", FieldPropertyOwnership, ErrInvalidValue, string(v))
		}
		a.PropertyOwnership = eligibility.PropertyOwnership(v)
	case nil:
		return a, fmt.Errorf("%w: nil update", ErrInvalidValue)
	default:
		return a, fmt.Errorf("%w: unsupported update %T", ErrInvalidValue, u)
	}

	return a, nil
}

// ApplyAll applies updates in order and stops at the first rejected one.
func ApplyAll(a eligibility.Applicant, updates ...Update) (eligibility.Applicant, error) {
	for _, u := range updates {
		next, err := Apply(a, u)
		if err != nil {
			return a, err
		}
		a = next
	}
	return a, nil
}

func checkAmount(field Field, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %w: not a finite number", field, ErrInvalidValue)
	}
	if v < 0 {
		return fmt.Errorf("%s: %w: must not be negative", field, ErrInvalidValue)
	}
	return nil
}
