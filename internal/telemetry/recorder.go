// Package telemetry emits MindFuel metrics to CloudWatch: API request
// latency and counts, daily wellness scores, and alert volumes.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"mindfuel/internal/types"
)

// putTimeout bounds metric calls made without a caller context.
const putTimeout = 2 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder records request and evaluation metrics. Failures are
// logged and never returned to the caller.
//
// Metrics emitted:
//   - APILatency, APIRequestCount: Dims {Method, Endpoint, Status}
//   - WellnessScore, ScreenTimeHours: no dims
//   - AlertsGenerated: Dims {Severity}, one datum per severity present
//   - AlertPublished: Dims {Severity}
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchRecorder creates a recorder publishing to namespace, or to
// types.MetricNamespace when namespace is empty.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchRecorder{client: client, namespace: namespace, logger: logger}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func (r *CloudWatchRecorder) put(ctx context.Context, what string, data []cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	}
	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.ErrorContext(ctx, "failed to record metric",
			"metric", what,
			"error", err.Error(),
		)
	}
}

// RecordRequest emits latency and count for one API request.
func (r *CloudWatchRecorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	dims := []cwtypes.Dimension{
		dim(types.DimMethod, method),
		dim(types.DimEndpoint, endpoint),
		dim(types.DimStatus, status),
	}
	r.put(ctx, types.MetricAPILatency, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
		{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
	})
}

// RecordEvaluation emits the day's score, screen time and alert counts.
func (r *CloudWatchRecorder) RecordEvaluation(ctx context.Context, score types.DailyWellnessScore, alerts []types.Alert) {
	ts := aws.Time(score.Date)
	data := []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricWellnessScore),
			Value:      aws.Float64(score.Score),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  ts,
		},
		{
			MetricName: aws.String(types.MetricScreenTimeHours),
			Value:      aws.Float64(score.ScreenTimeHours()),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  ts,
		},
	}

	counts := map[types.Severity]int{}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	for _, sev := range []types.Severity{types.SeverityLow, types.SeverityMedium, types.SeverityHigh, types.SeverityCritical} {
		if counts[sev] == 0 {
			continue
		}
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAlertsGenerated),
			Value:      aws.Float64(float64(counts[sev])),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{dim(types.DimSeverity, string(sev))},
			Timestamp:  ts,
		})
	}
	r.put(ctx, types.MetricWellnessScore, data)
}

// RecordAlertPublished counts one alert pushed to the notification queue.
func (r *CloudWatchRecorder) RecordAlertPublished(ctx context.Context, severity types.Severity) {
	r.put(ctx, types.MetricAlertPublished, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricAlertPublished),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{dim(types.DimSeverity, string(severity))},
		},
	})
}

// NopRecorder discards every metric.
type NopRecorder struct{}

func (NopRecorder) RecordRequest(string, string, string, time.Duration)                       {}
func (NopRecorder) RecordEvaluation(context.Context, types.DailyWellnessScore, []types.Alert) {}
func (NopRecorder) RecordAlertPublished(context.Context, types.Severity)                      {}
