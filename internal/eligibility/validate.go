package eligibility

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON field names so errors match what the caller sent.
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister(v, "finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
		mustRegister(v, "credit_band", func(fl validator.FieldLevel) bool {
			return CreditBand(fl.Field().String()).Known()
		})
		mustRegister(v, "employment_type", func(fl validator.FieldLevel) bool {
			return EmploymentType(fl.Field().String()).Known()
		})
		mustRegister(v, "property_ownership", func(fl validator.FieldLevel) bool {
			return PropertyOwnership(fl.Field().String()).Known()
		})
		mustRegister(v, "loan_term", func(fl validator.FieldLevel) bool {
			return LoanTerm(fl.Field().Int()).Known()
		})
		mustRegister(v, "verdict", func(fl validator.FieldLevel) bool {
			return Verdict(fl.Field().String()).Known()
		})

		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// FieldError names one field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// Validate checks the applicant against the documented input invariants.
func Validate(a Applicant) error {
	return check(a)
}

// ValidatePrediction checks a prediction has the exact result shape.
func ValidatePrediction(p Prediction) error {
	return check(p)
}

func check(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag()})
	}
	return out
}

// fieldPath drops the struct name prefix from a validator namespace.
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return ns
}
