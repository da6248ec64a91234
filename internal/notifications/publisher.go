// Package notifications pushes interrupting wellness alerts (High and
// Critical) to the device notification queue.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"mindfuel/internal/types"
)

// SeverityAttribute is the SQS message attribute carrying the alert severity,
// so queue consumers can filter without parsing the body.
const SeverityAttribute = "severity"

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// AlertMessage is the queue payload for one alert.
type AlertMessage struct {
	AlertID       string         `json:"alert_id"`
	AppIdentifier string         `json:"app_identifier"`
	Title         string         `json:"title"`
	Severity      types.Severity `json:"severity"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewAlertMessage builds the payload for a.
func NewAlertMessage(a types.Alert) AlertMessage {
	return AlertMessage{
		AlertID:       a.ID,
		AppIdentifier: a.AppIdentifier,
		Title:         a.Title,
		Severity:      a.Severity,
		CreatedAt:     a.CreatedAt,
	}
}

// AlertCounter counts published alerts.
type AlertCounter interface {
	RecordAlertPublished(ctx context.Context, severity types.Severity)
}

// AlertPublisher sends one SQS message per interrupting alert.
type AlertPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
	counter  AlertCounter
}

// NewAlertPublisher creates an AlertPublisher targeting queueURL. counter may
// be nil.
func NewAlertPublisher(client SQSSender, queueURL string, logger *slog.Logger, counter AlertCounter) *AlertPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
		counter:  counter,
	}
}

// Publish sends every interrupting alert in alerts; others are skipped.
// Sending continues past failures and the joined error is returned.
func (p *AlertPublisher) Publish(ctx context.Context, alerts []types.Alert) error {
	var errs []error
	for _, a := range alerts {
		if !a.Severity.Interrupts() {
			continue
		}
		if err := p.send(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *AlertPublisher) send(ctx context.Context, a types.Alert) error {
	body, err := json.Marshal(NewAlertMessage(a))
	if err != nil {
		return fmt.Errorf("alert publisher: failed to marshal alert %s: %w", a.ID, err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			SeverityAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(a.Severity)),
			},
		},
	}
	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("alert publisher: failed to send alert %s to %s: %w", a.ID, p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "alert published",
		"alert_id", a.ID,
		"app_identifier", a.AppIdentifier,
		"severity", string(a.Severity),
	)
	if p.counter != nil {
		p.counter.RecordAlertPublished(ctx, a.Severity)
	}
	return nil
}

// LogPublisher logs interrupting alerts instead of queueing them. It is used
// when no alert queue is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, alerts []types.Alert) error {
	for _, a := range alerts {
		if !a.Severity.Interrupts() {
			continue
		}
		p.logger.WarnContext(ctx, "wellness alert",
			"alert_id", a.ID,
			"app_identifier", a.AppIdentifier,
			"title", a.Title,
			"severity", string(a.Severity),
		)
	}
	return nil
}
