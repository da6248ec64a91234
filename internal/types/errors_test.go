package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorImplementsError(t *testing.T) {
	var _ error = (*AppError)(nil)
}

// TestAppErrorErrorFormat verifies Error() produces "code: message".
func TestAppErrorErrorFormat(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeValidationNegativeTime,
		Message: "time_spent_seconds must not be negative",
	}

	expected := "validation_negative_time: time_spent_seconds must not be negative"
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	underlying := errors.New("database connection failed")
	appErr := &AppError{
		Code:    ErrCodeInternalDB,
		Message: "failed to query alerts",
		Err:     underlying,
	}

	if appErr.Unwrap() != underlying {
		t.Errorf("Unwrap() returned unexpected error: got %v, want %v", appErr.Unwrap(), underlying)
	}
	if (&AppError{Code: ErrCodeNotFoundAlert}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

// TestAppErrorErrorsAs verifies that errors.As can extract AppError from a wrapped chain.
func TestAppErrorErrorsAs(t *testing.T) {
	appErr := NewAppError(ErrCodeValidationDuplicate, "duplicate observation", nil)
	wrappedErr := fmt.Errorf("evaluate: %w", appErr)

	var target *AppError
	if !errors.As(wrappedErr, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeValidationDuplicate {
		t.Errorf("extracted Code = %q, want %q", target.Code, ErrCodeValidationDuplicate)
	}
}

func TestAppErrorErrorsIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	appErr := NewAppError(ErrCodeInternalUnexpected, "unexpected failure", sentinel)

	if !errors.Is(appErr, sentinel) {
		t.Error("errors.Is should find the sentinel error through Unwrap")
	}
}

func TestNewAppErrorWithDetails(t *testing.T) {
	appErr := NewAppErrorWithDetails(
		ErrCodeValidationWeightRange,
		"wellness weight out of range",
		nil,
		map[string]any{"field": "wellness_weight", "value": 11.0},
	)

	if appErr.Details["field"] != "wellness_weight" {
		t.Errorf("Details[\"field\"] = %v, want wellness_weight", appErr.Details["field"])
	}
	if appErr.Details["value"] != 11.0 {
		t.Errorf("Details[\"value\"] = %v, want 11.0", appErr.Details["value"])
	}
}

// TestAppErrorWithDetails verifies WithDetails returns a merged copy and leaves the original alone.
func TestAppErrorWithDetails(t *testing.T) {
	original := NewAppErrorWithDetails(
		ErrCodeValidationMissingField,
		"field is required",
		nil,
		map[string]any{"field": "app_identifier", "index": 0},
	)

	enhanced := original.WithDetails(map[string]any{"index": 3, "hint": "use the bundle id"})

	if _, ok := original.Details["hint"]; ok {
		t.Error("WithDetails should not mutate the original error")
	}
	if enhanced.Details["field"] != "app_identifier" {
		t.Errorf("enhanced should retain original detail: field = %v", enhanced.Details["field"])
	}
	if enhanced.Details["index"] != 3 {
		t.Errorf("WithDetails should overwrite existing key: index = %v", enhanced.Details["index"])
	}
	if enhanced.Code != original.Code || enhanced.Message != original.Message {
		t.Error("Code and Message should carry over")
	}

	fromNil := NewAppError(ErrCodeNotFoundAlert, "not found", nil).WithDetails(map[string]any{"id": "alert_1"})
	if fromNil.Details["id"] != "alert_1" {
		t.Errorf("WithDetails on nil details should work: id = %v", fromNil.Details["id"])
	}
}

func TestErrorCodeHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationNegativeTime, http.StatusBadRequest},
		{ErrCodeValidationWeightRange, http.StatusBadRequest},
		{ErrCodeValidationDuplicate, http.StatusBadRequest},
		{ErrCodeValidationInvalidDate, http.StatusBadRequest},
		{ErrCodeValidationInvalidCategory, http.StatusBadRequest},
		{ErrCodeValidationInvalidPolicy, http.StatusBadRequest},
		{ErrCodeValidationInvalidField, http.StatusBadRequest},

		{ErrCodeNotFoundAlert, http.StatusNotFound},
		{ErrCodeNotFoundCuratedApp, http.StatusNotFound},

		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},

		{ErrCodeUpstreamUsageSource, http.StatusBadGateway},
		{ErrCodeUpstreamRateLimited, http.StatusBadGateway},

		{ErrorCode("conflict_anything"), http.StatusConflict},
		{ErrorCode("totally_unknown_error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.wantStatus {
				t.Errorf("ErrorCode(%q).HTTPStatus() = %d, want %d", tt.code, got, tt.wantStatus)
			}
		})
	}

	if NewAppError(ErrCodeNotFoundAlert, "x", nil).HTTPStatus() != http.StatusNotFound {
		t.Error("AppError.HTTPStatus should delegate to its code")
	}
}

func TestErrorCodeIsValidation(t *testing.T) {
	if !ErrCodeValidationDuplicate.IsValidation() {
		t.Error("duplicate observation should be a validation code")
	}
	if ErrCodeInternalDB.IsValidation() {
		t.Error("database error should not be a validation code")
	}
}

// TestAllErrorCodeStringValues guards the wire values clients match on.
func TestAllErrorCodeStringValues(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeValidationMissingField, "validation_missing_required_field"},
		{ErrCodeValidationInvalidJSON, "validation_invalid_json"},
		{ErrCodeValidationNegativeTime, "validation_negative_time"},
		{ErrCodeValidationWeightRange, "validation_weight_out_of_range"},
		{ErrCodeValidationDuplicate, "validation_duplicate_observation"},
		{ErrCodeValidationInvalidDate, "validation_invalid_date"},
		{ErrCodeValidationInvalidCategory, "validation_invalid_category"},
		{ErrCodeValidationInvalidPolicy, "validation_invalid_policy"},
		{ErrCodeNotFoundAlert, "not_found_alert"},
		{ErrCodeNotFoundCuratedApp, "not_found_curated_app"},
		{ErrCodeInternalDB, "internal_database_error"},
		{ErrCodeInternalUnexpected, "internal_unexpected_error"},
		{ErrCodeUpstreamUsageSource, "upstream_usage_source_unavailable"},
		{ErrCodeUpstreamRateLimited, "upstream_rate_limited"},
	}

	for _, tt := range tests {
		if string(tt.code) != tt.expected {
			t.Errorf("ErrorCode constant %q has value %q, want %q", tt.code, string(tt.code), tt.expected)
		}
	}
}
