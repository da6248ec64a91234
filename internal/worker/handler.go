// Package worker evaluates usage batches delivered through SQS.
//
// Each record body is a usage.Batch. Bodies are plain JSON, or base64 of a
// zstd frame when the record carries the message attribute
// content-encoding=zstd. An optional policy attribute selects the alert
// composition for that batch.
//
// Records are processed concurrently. Failures that may succeed on retry
// (database or upstream errors) are reported as batch item failures so SQS
// redelivers only those records. Malformed or invalid batches are logged and
// acknowledged, since retrying them can never succeed.
package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/sync/errgroup"

	"mindfuel/internal/evaluation"
	"mindfuel/internal/queue"
	"mindfuel/internal/types"
	"mindfuel/internal/usage"
)

// DefaultConcurrency is used when the handler is built with a limit below 1.
const DefaultConcurrency = 4

// DayProcessor evaluates and persists one day of usage.
type DayProcessor interface {
	ProcessDay(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*evaluation.Result, error)
}

// Handler is the Lambda entry point for the evaluation queue.
type Handler struct {
	processor   DayProcessor
	concurrency int
	logger      *slog.Logger
}

// NewHandler creates a Handler running at most concurrency records at once.
func NewHandler(processor DayProcessor, concurrency int, logger *slog.Logger) *Handler {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{processor: processor, concurrency: concurrency, logger: logger}
}

// Handle processes an SQS batch and returns the records SQS should retry.
// It never returns an error: per-record outcomes are carried in the
// response so one bad record does not fail the batch.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var (
		mu       sync.Mutex
		failures []events.SQSBatchItemFailure
	)

	g := new(errgroup.Group)
	g.SetLimit(h.concurrency)
	for _, record := range event.Records {
		g.Go(func() error {
			if err := h.processRecord(ctx, record); err != nil {
				h.logger.ErrorContext(ctx, "failed to process usage batch",
					"message_id", record.MessageId,
					"error", err,
				)
				mu.Lock()
				failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	h.logger.InfoContext(ctx, "usage batch processed",
		"records", len(event.Records),
		"failed", len(failures),
	)
	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

// processRecord returns an error only when the record should be retried.
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) error {
	logger := h.logger.With("message_id", record.MessageId)

	batch, err := decodeRecord(record)
	if err != nil {
		logger.WarnContext(ctx, "dropping malformed usage batch", "error", err)
		return nil
	}
	day, err := batch.Day()
	if err != nil {
		logger.WarnContext(ctx, "dropping usage batch with invalid date", "date", batch.Date, "error", err)
		return nil
	}

	policy := attribute(record, queue.AttrPolicy)
	res, err := h.processor.ProcessDay(ctx, day, batch.Usage, policy)
	if err != nil {
		if permanent(err) {
			logger.WarnContext(ctx, "dropping invalid usage batch",
				"date", batch.Date,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("process %s: %w", batch.Date, err)
	}

	logger.InfoContext(ctx, "usage batch evaluated",
		"date", res.Date,
		"score", res.Score.Score,
		"alerts", len(res.Alerts),
	)
	return nil
}

func decodeRecord(record events.SQSMessage) (usage.Batch, error) {
	body := []byte(record.Body)
	if strings.EqualFold(attribute(record, queue.AttrContentEncoding), queue.EncodingZstd) {
		raw, err := base64.StdEncoding.DecodeString(record.Body)
		if err != nil {
			return usage.Batch{}, fmt.Errorf("zstd body is not base64: %w", err)
		}
		body = raw
	}
	return usage.DecodeBatch(body)
}

func attribute(record events.SQSMessage, name string) string {
	attr, ok := record.MessageAttributes[name]
	if !ok || attr.StringValue == nil {
		return ""
	}
	return *attr.StringValue
}

// permanent reports whether err comes from the batch content rather than
// from infrastructure.
func permanent(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code.IsValidation()
}
