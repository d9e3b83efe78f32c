package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/loan-eligibility/internal/eligibility"
)

// ParseField resolves a field name case-insensitively.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return Field(name), fmt.Errorf("unknown field %q", name)
}

// Parse converts raw text entered for field into a typed update. Empty numeric
// input means zero.
func Parse(field Field, raw string) (Update, error) {
	raw = strings.TrimSpace(raw)

	if field.Numeric() {
		v, err := parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		switch field {
		case FieldApplicantIncome:
			return ApplicantIncome(v), nil
		case FieldCoApplicantIncome:
			return CoApplicantIncome(v), nil
		case FieldLoanAmount:
			return LoanAmount(v), nil
		case FieldYearsEmployment:
			return YearsEmployment(v), nil
		}
	}

	switch field {
	case FieldLoanTerm:
		term, err := eligibility.ParseLoanTerm(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		return LoanTerm(term), nil
	case FieldCreditScore:
		band, err := eligibility.ParseCreditBand(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		return CreditScore(band), nil
	case FieldEmploymentType:
		et, err := eligibility.ParseEmploymentType(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		return EmploymentType(et), nil
	case FieldExistingLiabilities:
		b, err := parseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		return ExistingLiabilities(b), nil
	case FieldPropertyOwnership:
		p, err := eligibility.ParsePropertyOwnership(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", field, ErrInvalidValue, err)
		}
		return PropertyOwnership(p), nil
	}

	return nil, fmt.Errorf("unknown field %q", field)
}

// Decode builds an applicant from a loosely typed map such as a config
// section. Missing keys keep their demo defaults; unknown keys are rejected.
func Decode(values map[string]any) (eligibility.Applicant, error) {
	a := eligibility.DefaultApplicant()
	if len(values) == 0 {
		return a, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(labelHook, boolHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &a,
	})
	if err != nil {
		return a, fmt.Errorf("creating applicant decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return eligibility.DefaultApplicant(), fmt.Errorf("decoding applicant: %w", err)
	}

	return a, nil
}

var (
	creditBandType = reflect.TypeOf(eligibility.CreditBand(""))
	employmentType = reflect.TypeOf(eligibility.EmploymentType(""))
	ownershipType  = reflect.TypeOf(eligibility.PropertyOwnership(""))
	loanTermType   = reflect.TypeOf(eligibility.LoanTerm(0))
)

// labelHook maps short or differently cased enum labels to canonical ones.
func labelHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()

	switch to {
	case creditBandType:
		band, err := eligibility.ParseCreditBand(s)
		if err != nil {
			return nil, err
		}
		return band, nil
	case employmentType:
		et, err := eligibility.ParseEmploymentType(s)
		if err != nil {
			return nil, err
		}
		return et, nil
	case ownershipType:
		p, err := eligibility.ParsePropertyOwnership(s)
		if err != nil {
			return nil, err
		}
		return p, nil
	case loanTermType:
		term, err := eligibility.ParseLoanTerm(s)
		if err != nil {
			return nil, err
		}
		return term, nil
	}

	return data, nil
}

func boolHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return parseBool(reflect.ValueOf(data).String())
}

func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	raw = strings.NewReplacer(",", "", "$", "", "_", "").Replace(raw)
	return strconv.ParseFloat(raw, 64)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a yes/no value", raw)
}
