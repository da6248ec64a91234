package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"

	"mindfuel/internal/queue"
	"mindfuel/internal/types"
	"mindfuel/internal/usage"
	"mindfuel/internal/wellness"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <identifier> [display-name]",
		Short: "Show the category and wellness weight of an app",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return a.print(svc.Classify(args[0], name))
		},
	}
}

func newMockCmd(a *app) *cobra.Command {
	var (
		realistic bool
		seed      uint64
		date      string
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Print a day of synthetic usage as a batch file",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.day(date)
			if err != nil {
				return err
			}

			src := usage.NewFixedSource()
			if realistic {
				var rng *rand.Rand
				if cmd.Flags().Changed("seed") {
					rng = rand.New(rand.NewPCG(seed, seed))
				}
				src = usage.NewRealisticSource(rng)
			}
			raw, err := src.DailyUsage(cmd.Context(), day)
			if err != nil {
				return err
			}
			return a.print(usage.NewBatch(day, raw))
		},
	}
	cmd.Flags().BoolVar(&realistic, "realistic", false, "draw a randomized ten-app day")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for --realistic")
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		file string
		date string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a day of usage and list its alerts",
		Long: "Evaluate reads a batch file ({\"date\": ..., \"usage\": [...]}, plain or zstd)\n" +
			"and prints the score, alerts and summary. With --save the day is recorded\n" +
			"in the local database, replacing any earlier run for the same day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			batch, err := usage.DecodeBatch(data)
			if err != nil {
				return err
			}
			if date != "" {
				batch.Date = date
			}
			day, err := batch.Day()
			if err != nil {
				return err
			}

			svc, done, err := a.service(cmd.Context(), save)
			if err != nil {
				return err
			}
			defer done()

			if save {
				res, err := svc.ProcessDay(cmd.Context(), day, batch.Usage, a.policy)
				if err != nil {
					return err
				}
				return a.print(res)
			}
			res, err := svc.EvaluateRaw(cmd.Context(), day, batch.Usage, a.policy)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file to evaluate")
	cmd.Flags().StringVar(&date, "date", "", "override the batch date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&save, "save", false, "record the day in the local database")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAlertsCmd(a *app) *cobra.Command {
	var (
		all         bool
		minSeverity string
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List stored alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()

			alerts, err := svc.ListAlerts(cmd.Context(), types.AlertFilter{
				IncludeDismissed: all,
				MinSeverity:      types.Severity(minSeverity),
				Limit:            limit,
			})
			if err != nil {
				return err
			}
			if alerts == nil {
				alerts = []types.Alert{}
			}
			return a.print(alerts)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include dismissed alerts")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "only alerts at or above this severity")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum alerts to list (default 100)")
	return cmd
}

func newDismissCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <alert-id>",
		Short: "Mark an alert as dismissed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()

			alert, err := svc.DismissAlert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(alert)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var timeframe, from, to string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored daily scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()

			var scores []types.DailyWellnessScore
			if from != "" || to != "" {
				start, err := types.ParseDate(from)
				if err != nil {
					return err
				}
				end, err := types.ParseDate(to)
				if err != nil {
					return err
				}
				scores, err = svc.ListScores(cmd.Context(), start, end)
				if err != nil {
					return err
				}
			} else {
				tf := types.Timeframe(timeframe)
				if !tf.Valid() {
					return types.NewAppError(types.ErrCodeValidationInvalidField,
						fmt.Sprintf("unknown timeframe %q", timeframe), nil)
				}
				scores, err = svc.ScoresFor(cmd.Context(), tf)
				if err != nil {
					return err
				}
			}
			if scores == nil {
				scores = []types.DailyWellnessScore{}
			}
			return a.print(scores)
		},
	}
	cmd.Flags().StringVar(&timeframe, "timeframe", string(types.TimeframeThisWeek), "today, this_week or this_month")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD), with --to")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD), with --from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("timeframe", "from")
	return cmd
}

// day parses date, defaulting to today.
func (a *app) day(date string) (time.Time, error) {
	if date == "" {
		return types.DayStart(a.clock.Now()), nil
	}
	return types.ParseDate(date)
}

func newEnqueueCmd(a *app) *cobra.Command {
	var (
		file     string
		queueURL string
		region   string
		endpoint string
		compress bool
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Send a batch file to the evaluation queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if queueURL == "" {
				queueURL = os.Getenv("SQS_EVALUATIONS")
			}
			if queueURL == "" {
				return fmt.Errorf("--queue-url or SQS_EVALUATIONS is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			batch, err := usage.DecodeBatch(data)
			if err != nil {
				return err
			}
			if a.policy != "" {
				if _, err := wellness.ParseComposition(a.policy); err != nil {
					return err
				}
			}

			sender, err := a.newSender(cmd.Context(), region, endpoint)
			if err != nil {
				return err
			}
			id, err := queue.NewProducer(sender, queueURL, compress, a.logger).Enqueue(cmd.Context(), batch, a.policy)
			if err != nil {
				return err
			}
			return a.print(map[string]string{"batch_id": id, "date": batch.Date})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file to send")
	cmd.Flags().StringVar(&queueURL, "queue-url", "", "evaluation queue URL (env SQS_EVALUATIONS)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from the AWS config chain)")
	cmd.Flags().StringVar(&endpoint, "endpoint-url", "", "custom SQS endpoint, e.g. LocalStack")
	cmd.Flags().BoolVar(&compress, "compress", true, "zstd-compress the message body")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// sqsSender builds an SQS client from the default AWS config chain.
func sqsSender(ctx context.Context, region, endpoint string) (queue.SQSSender, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
