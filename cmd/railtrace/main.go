// RailTrace CLI - Track Component Maintenance Intelligence
//
// Usage:
//   railtrace analyze [--config railtrace.yaml] [--format json]
//   railtrace analyze --input fleet.json --seed 42
//   railtrace history --limit 20
//   railtrace history --run 9f1c2d3e-...
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"railtrace/db/clickhouse"
	"railtrace/db/postgres"
	"railtrace/internal/config"
	"railtrace/internal/pipeline"
	"railtrace/pkg/api"
	"railtrace/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "railtrace",
		Usage:   "Track Component Maintenance Intelligence - predictive analytics for rail fitments",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"RAILTRACE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"RAILTRACE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host for run history",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "railtrace",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			analyzeCommand(),
			historyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// ANALYZE COMMAND
// =============================================================================

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run the full analysis pipeline against the current fleet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Analyze an exported fleet snapshot (JSON) instead of the database",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "summary",
				Usage:   "Output format (summary, json)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Noise seed for reproducible runs (default: current time)",
			},
			&cli.BoolFlag{
				Name:  "no-store",
				Usage: "Skip persisting the run to ClickHouse",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	ctx := context.Background()
	logger := platform.InitLogger(c.String("log-level"))

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var source pipeline.ComponentSource
	if path := c.String("input"); path != "" {
		static, err := loadSnapshot(path)
		if err != nil {
			return err
		}
		source = static
	} else {
		pg, err := postgres.NewSourceFromDSN(cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to component database: %w", err)
		}
		defer pg.Close()
		source = pg
	}

	var store pipeline.RunStore
	if !c.Bool("no-store") {
		ch, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		defer ch.Close()
		store = ch
	}

	seed := c.Int64("seed")
	if !c.IsSet("seed") {
		seed = time.Now().UnixNano()
	}

	bundle, err := pipeline.New(cfg, source, store, seed, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	default:
		printSummary(bundle)
		return nil
	}
}

func loadSnapshot(path string) (*postgres.StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var records []api.ComponentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &postgres.StaticSource{Records: records}, nil
}

func printSummary(bundle *api.AnalysisBundle) {
	fmt.Printf("Run %s: %s (%.2fs)\n", bundle.RunID, bundle.Status, bundle.Stats.ExecutionSeconds)
	if bundle.Status != api.StatusSuccess {
		return
	}
	fmt.Printf("  Components analyzed:    %d\n", bundle.Stats.ComponentsProcessed)
	fmt.Printf("  Critical / high risk:   %d / %d\n", bundle.CriticalComponents, bundle.HighRiskComponents)
	fmt.Printf("  Immediate attention:    %d\n", bundle.ImmediateAttention)
	fmt.Printf("  Due within 30/90 days:  %d / %d\n", bundle.Next30Days, bundle.Next90Days)
	fmt.Printf("  Scheduled actions:      %d\n", len(bundle.Schedule))
	fmt.Printf("  Estimated cost:         %.2f\n", bundle.Resources.TotalEstimatedCost)
	if bundle.Performance.TopPerformer != "" {
		fmt.Printf("  Top manufacturer:       %s\n", bundle.Performance.TopPerformer)
	}
}

// =============================================================================
// HISTORY COMMAND
// =============================================================================

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List persisted analysis runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
				Usage: "Maximum runs to list",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Print the full stored bundle for one run ID instead of listing",
			},
		},
		Action: runHistory,
	}
}

func runHistory(c *cli.Context) error {
	ctx := context.Background()

	store, err := clickhouse.NewStore(&clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	defer store.Close()

	if id := c.String("run"); id != "" {
		return printRun(ctx, store, id)
	}

	runs, err := store.ListRuns(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-10s  %-20s  %10s  %8s  %8s\n",
		"RUN", "STATUS", "EXECUTED", "COMPONENTS", "CRITICAL", "COST")
	for _, run := range runs {
		fmt.Printf("%-36s  %-10s  %-20s  %10d  %8d  %8s\n",
			run.RunID, run.Status, run.ExecutedAt.Format("2006-01-02 15:04:05"),
			run.Components, run.Critical, run.TotalCost.StringFixed(2))
	}
	return nil
}

func printRun(ctx context.Context, store *clickhouse.Store, id string) error {
	runID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", id, err)
	}

	rec, err := store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("run %s not found", id)
	}

	bundle, err := rec.UnmarshalBundle()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}
