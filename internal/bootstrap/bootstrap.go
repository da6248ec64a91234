// Package bootstrap wires the evaluation service and its infrastructure from
// configuration. Both the HTTP API and the queue worker start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindfuel/internal/config"
	"mindfuel/internal/db"
	"mindfuel/internal/evaluation"
	"mindfuel/internal/external"
	"mindfuel/internal/notifications"
	"mindfuel/internal/telemetry"
	"mindfuel/internal/usage"
	"mindfuel/internal/wellness"
)

// Recorder is the union of the metric sinks the service and server use.
type Recorder interface {
	evaluation.Metrics
	notifications.AlertCounter
	RecordRequest(method, endpoint, status string, d time.Duration)
}

// Deps is everything an entry point needs.
type Deps struct {
	Service  *evaluation.Service
	Pool     *pgxpool.Pool
	Recorder Recorder
}

// Close releases the database pool.
func (d *Deps) Close() error {
	if d.Pool != nil {
		d.Pool.Close()
	}
	return nil
}

// NewLogger returns a JSON logger on stdout at level. Unknown levels map to
// info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// Build connects to PostgreSQL, optionally migrates, and assembles the
// evaluation service with its publisher, metrics and usage source.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	pool, err := db.NewPool(ctx, cfg.Database.URL.Unmask(), db.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	deps, err := assemble(ctx, cfg, logger, db.NewStore(db.Pool{Pool: pool}))
	if err != nil {
		pool.Close()
		return nil, err
	}
	deps.Pool = pool
	return deps, nil
}

// assemble builds everything above the store.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, store evaluation.Store) (*Deps, error) {
	classifier, err := NewClassifier(cfg.Wellness.CatalogPath)
	if err != nil {
		return nil, err
	}
	evaluator := wellness.NewEvaluator(wellness.WithComposition(wellness.Composition(cfg.Wellness.Composition)))

	var awsCfg *aws.Config
	if cfg.AWS.AlertQueueURL != "" || cfg.Observability.EnableMetrics {
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		awsCfg = &c
	}

	var recorder Recorder = telemetry.NopRecorder{}
	if cfg.Observability.EnableMetrics {
		client := cloudwatch.NewFromConfig(*awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		recorder = telemetry.NewCloudWatchRecorder(client, cfg.Observability.MetricNamespace, logger)
	}

	var publisher evaluation.Publisher = notifications.NewLogPublisher(logger)
	if cfg.AWS.AlertQueueURL != "" {
		client := sqs.NewFromConfig(*awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		publisher = notifications.NewAlertPublisher(client, cfg.AWS.AlertQueueURL, logger, recorder)
	}

	svc := evaluation.NewService(classifier, evaluator, store,
		evaluation.WithPublisher(publisher),
		evaluation.WithMetrics(recorder),
		evaluation.WithSource(NewSource(cfg)),
		evaluation.WithLogger(logger),
	)

	logger.Info("evaluation service ready",
		"composition", string(evaluator.Composition()),
		"catalog_size", classifier.Size(),
		"remote_usage", cfg.Usage.SourceURL != "",
		"alert_queue", cfg.AWS.AlertQueueURL != "",
		"metrics", cfg.Observability.EnableMetrics,
	)
	return &Deps{Service: svc, Recorder: recorder}, nil
}

// NewClassifier loads the catalog at path, or the built-in catalog when path
// is empty. The realistic mock's device identifiers sit beneath either so a
// generated day classifies the same way everywhere.
func NewClassifier(path string) (*wellness.Classifier, error) {
	if path == "" {
		return wellness.NewClassifier(usage.RealisticCatalog().Merge(wellness.DefaultCatalog())), nil
	}
	catalog, err := wellness.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, errors.New("classifier catalog is empty")
	}
	return wellness.NewClassifier(usage.RealisticCatalog().Merge(catalog)), nil
}

// NewSource returns the remote usage service when one is configured and the
// fixed mock dataset otherwise.
func NewSource(cfg *config.Config) usage.Source {
	if cfg.Usage.SourceURL == "" {
		return usage.NewFixedSource()
	}
	client := external.NewBaseClient(
		&http.Client{Timeout: cfg.Usage.Timeout},
		"usage-source",
		external.DefaultRetryPolicy(),
		"MindFuel/"+cfg.Build.Version,
	)
	return usage.NewRemoteSource(client, cfg.Usage.SourceURL, cfg.Usage.SourceToken)
}
