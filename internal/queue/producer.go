// Package queue sends usage batches to the evaluation queue consumed by the
// evaluator worker.
package queue

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"mindfuel/internal/usage"
)

// Message attributes shared by the producer and the worker.
const (
	AttrContentEncoding = "content-encoding"
	AttrPolicy          = "policy"
	AttrBatchID         = "batch_id"

	EncodingZstd = "zstd"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Producer enqueues usage batches. Compressed bodies are base64 zstd frames
// flagged with content-encoding=zstd.
type Producer struct {
	client   SQSSender
	queueURL string
	compress bool
	logger   *slog.Logger
}

// NewProducer creates a Producer for queueURL.
func NewProducer(client SQSSender, queueURL string, compress bool, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{client: client, queueURL: queueURL, compress: compress, logger: logger}
}

// Enqueue sends b and returns the generated batch ID. An empty policy leaves
// the worker's default composition in place.
func (p *Producer) Enqueue(ctx context.Context, b usage.Batch, policy string) (string, error) {
	data, err := usage.EncodeBatch(b, p.compress)
	if err != nil {
		return "", err
	}

	batchID := uuid.NewString()
	attrs := map[string]sqsTypes.MessageAttributeValue{
		AttrBatchID: stringAttr(batchID),
	}
	body := string(data)
	if p.compress {
		body = base64.StdEncoding.EncodeToString(data)
		attrs[AttrContentEncoding] = stringAttr(EncodingZstd)
	}
	if policy != "" {
		attrs[AttrPolicy] = stringAttr(policy)
	}

	if _, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	}); err != nil {
		return "", fmt.Errorf("queue: failed to send batch for %s: %w", b.Date, err)
	}

	p.logger.InfoContext(ctx, "usage batch enqueued",
		"queue_url", p.queueURL,
		"batch_id", batchID,
		"date", b.Date,
		"entries", len(b.Usage),
		"compressed", p.compress,
	)
	return batchID, nil
}

func stringAttr(v string) sqsTypes.MessageAttributeValue {
	return sqsTypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
