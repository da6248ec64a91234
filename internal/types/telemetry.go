package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"
	MetricWellnessScore   = "WellnessScore"
	MetricScreenTimeHours = "ScreenTimeHours"
	MetricAlertsGenerated = "AlertsGenerated"
	MetricAlertPublished  = "AlertPublished"

	// Dimension Keys
	DimMethod   = "Method"
	DimEndpoint = "Endpoint"
	DimStatus   = "Status"
	DimSeverity = "Severity"

	// Metric Namespace
	MetricNamespace = "MindFuel"
)
