package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mindfuel/internal/types"
	"mindfuel/internal/wellness"
)

// ValidationError describes one failed field rule in a request body.
type ValidationError struct {
	Field   string          `json:"field"`
	Code    types.ErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Validator wraps go-playground/validator with the MindFuel request tags:
//
//	iso_date     YYYY-MM-DD calendar date
//	composition  alert composition policy name
//	severity     low, medium, high or critical
//	timeframe    today, this_week or this_month
//
// Empty strings pass the custom tags; combine with required where needed.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator that reports fields by their JSON names.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "iso_date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := types.ParseDate(s)
		return err == nil
	})
	mustRegister(v, "composition", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || wellness.Composition(s).Valid()
	})
	mustRegister(v, "severity", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || types.Severity(s).Valid()
	})
	mustRegister(v, "timeframe", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || types.Timeframe(s).Valid()
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{validate: v, logger: logger}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// ValidateStruct checks s against its validate tags. On failure it returns an
// AppError whose code is that of the first failing field and whose
// Details["validation_errors"] lists every failure.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a programming error, not bad input.
		v.logger.Error("struct validation misuse", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, describe(fe))
	}
	return types.NewAppErrorWithDetails(
		errs[0].Code,
		fmt.Sprintf("request validation failed: %s", errs[0].Message),
		nil,
		map[string]any{"validation_errors": errs},
	)
}

func describe(fe validator.FieldError) ValidationError {
	field := fieldPath(fe)
	out := ValidationError{Field: field, Code: types.ErrCodeValidationInvalidField}

	switch tag := fe.Tag(); {
	case tag == "required":
		out.Code = types.ErrCodeValidationMissingField
		out.Message = field + " is required"
	case strings.HasPrefix(tag, "required_"):
		out.Code = types.ErrCodeValidationMissingField
		out.Message = fmt.Sprintf("%s is required when %s is set", field, fe.Param())
	case strings.HasPrefix(tag, "excluded_"):
		out.Message = fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	case tag == "iso_date":
		out.Code = types.ErrCodeValidationInvalidDate
		out.Message = fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", field, fe.Value())
	case tag == "composition":
		out.Code = types.ErrCodeValidationInvalidPolicy
		out.Message = fmt.Sprintf("%s is not a known composition policy: %q", field, fe.Value())
	case tag == "gte", tag == "min":
		out.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case tag == "lte", tag == "max":
		out.Message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		out.Message = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace:
// "evaluateRequest.usage[2].app_identifier" becomes "usage[2].app_identifier".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
