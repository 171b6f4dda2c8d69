package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// TermsInput is the loan input contract presentation layers must satisfy
// before handing terms to the amortization engine.
type TermsInput struct {
	Principal    float64 `json:"principal" yaml:"principal" validate:"gt=0"`
	InterestRate float64 `json:"interestRate" yaml:"interestRate" validate:"loanrate"`
	Years        int     `json:"years" yaml:"years" validate:"loanyears"`
}

// Terms converts the input into engine terms.
func (in TermsInput) Terms() amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:         in.Principal,
		AnnualRatePercent: in.InterestRate,
		Years:             in.Years,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterAlias("loanrate", fmt.Sprintf("gte=0,lte=%g", constants.MaxAnnualRatePercent))
	v.RegisterAlias("loanyears", fmt.Sprintf("gte=%d,lte=%d", constants.MinYears, constants.MaxYears))
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateTerms checks the input against the accepted bounds and returns an
// error wrapping amortization.ErrInvalidInput that lists every violation.
func ValidateTerms(in TermsInput) error {
	if err := validate.Struct(in); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %v", amortization.ErrInvalidInput, err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, describe(e))
		}
		return fmt.Errorf("%w: %s", amortization.ErrInvalidInput, strings.Join(messages, "; "))
	}

	// Bounds pass for +Inf principal; the engine also rejects non-finite values.
	return in.Terms().Validate()
}

func describe(e validator.FieldError) string {
	// ActualTag resolves aliases to the failing rule.
	switch e.ActualTag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.ActualTag())
	}
}
