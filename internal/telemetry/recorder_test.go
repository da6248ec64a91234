package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"mindfuel/internal/types"
)

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func dims(d []cwtypes.Dimension) map[string]string {
	out := map[string]string{}
	for _, x := range d {
		out[*x.Name] = *x.Value
	}
	return out
}

func TestRecordRequest(t *testing.T) {
	cw := &mockCloudWatchClient{}
	rec := NewCloudWatchRecorder(cw, "", slog.New(slog.DiscardHandler))

	rec.RecordRequest("POST", "/v1/wellness/evaluate", "200", 42*time.Millisecond)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.calls))
	}
	input := cw.calls[0]
	if *input.Namespace != types.MetricNamespace {
		t.Errorf("expected namespace %q, got %q", types.MetricNamespace, *input.Namespace)
	}
	if len(input.MetricData) != 2 {
		t.Fatalf("expected 2 metric data, got %d", len(input.MetricData))
	}

	latency := input.MetricData[0]
	if *latency.MetricName != types.MetricAPILatency || *latency.Value != 42 {
		t.Errorf("unexpected latency datum: %s=%v", *latency.MetricName, *latency.Value)
	}
	if latency.Unit != cwtypes.StandardUnitMilliseconds {
		t.Errorf("expected unit Milliseconds, got %s", latency.Unit)
	}
	want := map[string]string{"Method": "POST", "Endpoint": "/v1/wellness/evaluate", "Status": "200"}
	got := dims(latency.Dimensions)
	for k, v := range want {
		if got[k] != v {
			t.Errorf("dimension %s: expected %q, got %q", k, v, got[k])
		}
	}

	count := input.MetricData[1]
	if *count.MetricName != types.MetricAPIRequestCount || *count.Value != 1 {
		t.Errorf("unexpected count datum: %s=%v", *count.MetricName, *count.Value)
	}
}

func TestRecordEvaluation(t *testing.T) {
	cw := &mockCloudWatchClient{}
	rec := NewCloudWatchRecorder(cw, "MindFuelTest", nil)

	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	score := types.DailyWellnessScore{Date: day, Score: 3.5, TotalScreenTimeSeconds: 7200}
	alerts := []types.Alert{
		{Severity: types.SeverityCritical},
		{Severity: types.SeverityMedium},
		{Severity: types.SeverityCritical},
	}
	rec.RecordEvaluation(context.Background(), score, alerts)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(cw.calls))
	}
	input := cw.calls[0]
	if *input.Namespace != "MindFuelTest" {
		t.Errorf("expected custom namespace, got %q", *input.Namespace)
	}

	values := map[string]float64{}
	for _, d := range input.MetricData {
		key := *d.MetricName
		if sev, ok := dims(d.Dimensions)[types.DimSeverity]; ok {
			key += "/" + sev
		}
		values[key] = *d.Value
		if !d.Timestamp.Equal(day) {
			t.Errorf("%s: expected timestamp %v, got %v", key, day, *d.Timestamp)
		}
	}

	expected := map[string]float64{
		types.MetricWellnessScore:                 3.5,
		types.MetricScreenTimeHours:               2,
		types.MetricAlertsGenerated + "/medium":   1,
		types.MetricAlertsGenerated + "/critical": 2,
	}
	if len(values) != len(expected) {
		t.Fatalf("expected %d data, got %v", len(expected), values)
	}
	for k, v := range expected {
		if values[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, values[k])
		}
	}
}

func TestRecordAlertPublished(t *testing.T) {
	cw := &mockCloudWatchClient{}
	rec := NewCloudWatchRecorder(cw, "", nil)

	rec.RecordAlertPublished(context.Background(), types.SeverityHigh)

	if len(cw.calls) != 1 || len(cw.calls[0].MetricData) != 1 {
		t.Fatalf("expected a single datum")
	}
	d := cw.calls[0].MetricData[0]
	if *d.MetricName != types.MetricAlertPublished {
		t.Errorf("unexpected metric %s", *d.MetricName)
	}
	if dims(d.Dimensions)[types.DimSeverity] != "high" {
		t.Errorf("expected severity dimension high")
	}
}

func TestRecorder_ErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	cw := &mockCloudWatchClient{returnErr: errors.New("throttled")}
	rec := NewCloudWatchRecorder(cw, "", slog.New(slog.NewJSONHandler(&buf, nil)))

	rec.RecordRequest("GET", "/health", "200", time.Millisecond)
	rec.RecordEvaluation(context.Background(), types.DailyWellnessScore{Score: 5}, nil)

	if strings.Count(buf.String(), "failed to record metric") != 2 {
		t.Errorf("expected two logged failures, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "throttled") {
		t.Errorf("expected underlying error in log")
	}
}

func TestNopRecorder(t *testing.T) {
	var r NopRecorder
	r.RecordRequest("GET", "/", "200", time.Second)
	r.RecordEvaluation(context.Background(), types.DailyWellnessScore{}, nil)
	r.RecordAlertPublished(context.Background(), types.SeverityHigh)
}
