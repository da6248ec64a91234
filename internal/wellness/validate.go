package wellness

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mindfuel/internal/types"
)

// Violation describes one precondition failure in an observation set.
type Violation struct {
	Index         int             `json:"index"`
	AppIdentifier string          `json:"app_identifier,omitempty"`
	Field         string          `json:"field"`
	Code          types.ErrorCode `json:"code"`
	Message       string          `json:"message"`
}

var observationValidator = newObservationValidator()

func newObservationValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(fmt.Sprintf("registering finite validation: %v", err))
	}
	return v
}

// Validate checks the observation set against the engine's preconditions:
// identifiers present, non-negative time and sessions, weights within
// [0, 10], finite numbers, a known category, and unique (identifier, day)
// pairs.
//
// All violations are collected. The returned AppError carries the code of
// the first one and lists every violation under Details["violations"].
func Validate(obs []types.UsageObservation) error {
	var violations []Violation

	seen := make(map[string]int, len(obs))
	for i, o := range obs {
		violations = append(violations, fieldViolations(i, o)...)

		if !o.Category.Valid() && o.Category != "" {
			violations = append(violations, Violation{
				Index:         i,
				AppIdentifier: o.AppIdentifier,
				Field:         "category",
				Code:          types.ErrCodeValidationInvalidCategory,
				Message:       fmt.Sprintf("unknown category %q", o.Category),
			})
		}

		if o.AppIdentifier == "" {
			continue
		}
		key := o.AppIdentifier + "|" + types.DayStart(o.WindowDate).Format(types.DateLayout)
		if first, dup := seen[key]; dup {
			violations = append(violations, Violation{
				Index:         i,
				AppIdentifier: o.AppIdentifier,
				Field:         "app_identifier",
				Code:          types.ErrCodeValidationDuplicate,
				Message: fmt.Sprintf("duplicate observation for %s on %s (first at index %d)",
					o.AppIdentifier, types.DayStart(o.WindowDate).Format(types.DateLayout), first),
			})
			continue
		}
		seen[key] = i
	}

	if len(violations) == 0 {
		return nil
	}
	return types.NewAppErrorWithDetails(
		violations[0].Code,
		fmt.Sprintf("%d invalid observation(s): %s", len(violations), violations[0].Message),
		nil,
		map[string]any{"violations": violations},
	)
}

func fieldViolations(index int, o types.UsageObservation) []Violation {
	err := observationValidator.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{
			Index:         index,
			AppIdentifier: o.AppIdentifier,
			Code:          types.ErrCodeValidationInvalidField,
			Message:       err.Error(),
		}}
	}

	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		code, msg := describeFieldError(fe)
		out = append(out, Violation{
			Index:         index,
			AppIdentifier: o.AppIdentifier,
			Field:         fe.Field(),
			Code:          code,
			Message:       msg,
		})
	}
	return out
}

func describeFieldError(fe validator.FieldError) (types.ErrorCode, string) {
	switch {
	case fe.Tag() == "required":
		return types.ErrCodeValidationMissingField, fe.Field() + " is required"
	case fe.Tag() == "finite" && fe.Field() == "time_spent_seconds":
		return types.ErrCodeValidationNegativeTime, fmt.Sprintf("time_spent_seconds must be a finite number, got %v", fe.Value())
	case fe.Tag() == "finite" && fe.Field() == "wellness_weight":
		return types.ErrCodeValidationWeightRange, fmt.Sprintf("wellness_weight must be a finite number, got %v", fe.Value())
	case fe.Field() == "time_spent_seconds":
		return types.ErrCodeValidationNegativeTime, fmt.Sprintf("time_spent_seconds must be >= 0, got %v", fe.Value())
	case fe.Field() == "wellness_weight":
		return types.ErrCodeValidationWeightRange, fmt.Sprintf("wellness_weight must be within [0, 10], got %v", fe.Value())
	default:
		return types.ErrCodeValidationInvalidField, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// ViolationsOf extracts the violation list from a Validate error.
func ViolationsOf(err error) []Violation {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	v, _ := appErr.Details["violations"].([]Violation)
	return v
}
