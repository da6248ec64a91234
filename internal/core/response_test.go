package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindfuel/internal/types"
)

func requestWithID(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/v1/test", strings.NewReader(body))
	return req.WithContext(types.WithRequestID(req.Context(), "req-1"))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func TestData_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, requestWithID(http.MethodGet, ""), http.StatusCreated, map[string]int{"score": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != `{"data":{"score":7}}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestData_NilStillHasDataKey(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, requestWithID(http.MethodGet, ""), http.StatusOK, nil)
	if rec.Body.String() != `{"data":null}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, requestWithID(http.MethodGet, ""), http.StatusOK, map[string]float64{"bad": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != string(types.ErrCodeInternalUnexpected) || detail.RequestID != "req-1" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestError_StatusByCode(t *testing.T) {
	tests := []struct {
		code   types.ErrorCode
		status int
	}{
		{types.ErrCodeValidationNegativeTime, http.StatusBadRequest},
		{types.ErrCodeValidationInvalidPolicy, http.StatusBadRequest},
		{types.ErrCodeNotFoundAlert, http.StatusNotFound},
		{types.ErrCodeNotFoundCuratedApp, http.StatusNotFound},
		{types.ErrCodeInternalDB, http.StatusInternalServerError},
		{types.ErrCodeUpstreamUsageSource, http.StatusBadGateway},
		{types.ErrCodeUpstreamRateLimited, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, requestWithID(http.MethodGet, ""), types.NewAppError(tt.code, "msg", errors.New("secret cause")))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			detail := decodeError(t, rec)
			if detail.Code != string(tt.code) || detail.Message != "msg" || detail.RequestID != "req-1" {
				t.Errorf("detail = %+v", detail)
			}
			if strings.Contains(rec.Body.String(), "secret cause") {
				t.Error("wrapped cause leaked to the client")
			}
		})
	}
}

func TestError_WrappedAppErrorWithDetails(t *testing.T) {
	appErr := types.NewAppErrorWithDetails(types.ErrCodeNotFoundAlert, "alert not found", nil,
		map[string]any{"alert_id": "alert_1"})

	rec := httptest.NewRecorder()
	Error(rec, requestWithID(http.MethodPost, ""), fmt.Errorf("dismiss: %w", appErr))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Details["alert_id"] != "alert_1" {
		t.Errorf("details = %v", detail.Details)
	}
}

func TestError_GenericErrorHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, requestWithID(http.MethodGet, ""), errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != string(types.ErrCodeInternalUnexpected) || detail.Message != "an unexpected error occurred" {
		t.Errorf("detail = %+v", detail)
	}
}

type decodeTarget struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"date":"2026-10-14","count":3}`, ""},
		{"unknown field", `{"date":"2026-10-14","extra":1}`, "unknown field"},
		{"syntax error", `{"date":`, "malformed JSON"},
		{"type mismatch", `{"count":"three"}`, "invalid value for field"},
		{"empty body", ``, "must not be empty"},
		{"two values", `{"count":1}{"count":2}`, "single JSON object"},
		{"too large", `{"date":"` + strings.Repeat("x", maxRequestBodySize) + `"}`, "1MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst decodeTarget
			rec := httptest.NewRecorder()
			err := DecodeJSON(rec, requestWithID(http.MethodPost, tt.body), &dst)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Date != "2026-10-14" || dst.Count != 3 {
					t.Errorf("dst = %+v", dst)
				}
				return
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != types.ErrCodeValidationInvalidJSON {
				t.Errorf("code = %s", appErr.Code)
			}
			if !strings.Contains(appErr.Message, tt.wantErr) {
				t.Errorf("message = %q, want it to contain %q", appErr.Message, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_NilBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = nil
	var dst decodeTarget
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Error("expected error for nil body")
	}
}
