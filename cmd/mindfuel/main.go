// Command mindfuel classifies apps and evaluates daily usage offline, keeping
// scores and alerts in a local SQLite database.
//
//	mindfuel mock --realistic > today.json
//	mindfuel evaluate --file today.json --save
//	mindfuel alerts
//	mindfuel history --timeframe this_week
//	mindfuel enqueue --file today.json --queue-url $SQS_EVALUATIONS
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mindfuel/internal/bootstrap"
	"mindfuel/internal/evaluation"
	"mindfuel/internal/localstore"
	"mindfuel/internal/queue"
	"mindfuel/internal/types"
	"mindfuel/internal/wellness"
)

// DBEnv overrides the default database location.
const DBEnv = "MINDFUEL_DB"

// app carries the global flags and the dependencies shared by subcommands.
type app struct {
	out         io.Writer
	clock       types.Clock
	logger      *slog.Logger
	dbPath      string
	catalogPath string
	policy      string

	newSender func(ctx context.Context, region, endpoint string) (queue.SQSSender, error)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a := &app{out: os.Stdout, clock: types.RealClock{}, logger: logger, newSender: sqsSender}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "mindfuel",
		Short:         "Digital wellness scores and alerts from app usage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDBPath(), "SQLite database path (env "+DBEnv+")")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "YAML catalog overlaying the built-in classifier")
	root.PersistentFlags().StringVar(&a.policy, "policy", "", "alert composition policy (default most_severe)")

	root.AddCommand(
		newClassifyCmd(a),
		newMockCmd(a),
		newEvaluateCmd(a),
		newAlertsCmd(a),
		newDismissCmd(a),
		newHistoryCmd(a),
		newEnqueueCmd(a),
	)
	return root
}

func defaultDBPath() string {
	if p := os.Getenv(DBEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mindfuel.db"
	}
	return filepath.Join(home, ".mindfuel", "mindfuel.db")
}

// service builds the evaluation service. Without a store it can only
// classify and evaluate; the returned close func is always safe to call.
func (a *app) service(ctx context.Context, withStore bool) (*evaluation.Service, func(), error) {
	classifier, err := bootstrap.NewClassifier(a.catalogPath)
	if err != nil {
		return nil, nil, err
	}

	var (
		store   evaluation.Store
		closeFn = func() {}
	)
	if withStore {
		s, err := localstore.Open(ctx, a.dbPath)
		if err != nil {
			return nil, nil, err
		}
		store = s
		closeFn = func() {
			if err := s.Close(); err != nil {
				a.logger.Warn("failed to close database", "error", err)
			}
		}
	}

	evaluator := wellness.NewEvaluator(wellness.WithClock(a.clock))
	svc := evaluation.NewService(classifier, evaluator, store,
		evaluation.WithClock(a.clock),
		evaluation.WithLogger(a.logger),
	)
	return svc, closeFn, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
