package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"mindfuel/internal/types"
)

// mockSQSSender records all SendMessage calls for verification.
type mockSQSSender struct {
	calls     []*sqs.SendMessageInput
	returnErr error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &sqs.SendMessageOutput{}, nil
}

type countingRecorder struct {
	published []types.Severity
}

func (c *countingRecorder) RecordAlertPublished(_ context.Context, s types.Severity) {
	c.published = append(c.published, s)
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123/alerts"

var created = time.Date(2026, 10, 14, 21, 0, 0, 0, time.UTC)

func testAlerts() []types.Alert {
	return []types.Alert{
		{ID: "alert_1", AppIdentifier: "com.tiktok.tiktok", Title: "Excessive TikTok Usage Detected", Severity: types.SeverityCritical, CreatedAt: created},
		{ID: "alert_2", AppIdentifier: "com.facebook.Facebook", Title: "Excessive Social Media Usage", Severity: types.SeverityMedium, CreatedAt: created},
		{ID: "alert_3", AppIdentifier: "com.roblox.Roblox", Title: "Extended Gaming Session", Severity: types.SeverityHigh, CreatedAt: created},
	}
}

func TestAlertPublisher_SendsOnlyInterruptingAlerts(t *testing.T) {
	sender := &mockSQSSender{}
	counter := &countingRecorder{}
	pub := NewAlertPublisher(sender, queueURL, slog.New(slog.DiscardHandler), counter)

	if err := pub.Publish(context.Background(), testAlerts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.calls) != 2 {
		t.Fatalf("expected 2 SQS calls, got %d", len(sender.calls))
	}

	var sent AlertMessage
	if err := json.Unmarshal([]byte(*sender.calls[0].MessageBody), &sent); err != nil {
		t.Fatalf("failed to unmarshal sent body: %v", err)
	}
	if sent.AlertID != "alert_1" || sent.Severity != types.SeverityCritical {
		t.Errorf("unexpected first message: %+v", sent)
	}
	if !sent.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, sent.CreatedAt)
	}
	if *sender.calls[0].QueueUrl != queueURL {
		t.Errorf("expected queue %q, got %q", queueURL, *sender.calls[0].QueueUrl)
	}

	attr, ok := sender.calls[1].MessageAttributes[SeverityAttribute]
	if !ok {
		t.Fatal("severity attribute missing")
	}
	if *attr.StringValue != "high" || *attr.DataType != "String" {
		t.Errorf("unexpected severity attribute: %s/%s", *attr.DataType, *attr.StringValue)
	}

	if len(counter.published) != 2 {
		t.Errorf("expected 2 published metrics, got %d", len(counter.published))
	}
}

func TestAlertPublisher_BodyFieldNames(t *testing.T) {
	sender := &mockSQSSender{}
	pub := NewAlertPublisher(sender, queueURL, nil, nil)

	if err := pub.Publish(context.Background(), testAlerts()[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(*sender.calls[0].MessageBody), &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"alert_id", "app_identifier", "title", "severity", "created_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in body", key)
		}
	}
}

func TestAlertPublisher_SendErrorContinues(t *testing.T) {
	sender := &mockSQSSender{returnErr: errors.New("access denied")}
	counter := &countingRecorder{}
	pub := NewAlertPublisher(sender, queueURL, slog.New(slog.DiscardHandler), counter)

	err := pub.Publish(context.Background(), testAlerts())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sender.calls) != 2 {
		t.Errorf("expected both interrupting alerts to be attempted, got %d calls", len(sender.calls))
	}
	if !strings.Contains(err.Error(), "alert_1") || !strings.Contains(err.Error(), "alert_3") {
		t.Errorf("expected both alert ids in error, got %v", err)
	}
	if len(counter.published) != 0 {
		t.Errorf("failed sends must not be counted")
	}
}

func TestAlertPublisher_NothingToSend(t *testing.T) {
	sender := &mockSQSSender{}
	pub := NewAlertPublisher(sender, queueURL, nil, nil)

	if err := pub.Publish(context.Background(), testAlerts()[1:2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Errorf("expected no calls, got %d", len(sender.calls))
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := pub.Publish(context.Background(), testAlerts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "wellness alert") != 2 {
		t.Errorf("expected 2 log lines, got:\n%s", out)
	}
	if strings.Contains(out, "alert_2") {
		t.Errorf("medium alert should not be logged")
	}
}
