package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/tabgraph/internal/cli"
	"horse.fit/tabgraph/internal/config"
	"horse.fit/tabgraph/internal/db"
	"horse.fit/tabgraph/internal/logging"
)

func runRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	limit := fs.Int("limit", 20, "Maximum runs to list")
	source := fs.String("source", "", "Only list runs for this source")
	show := fs.String("show", "", "Print the stored graph JSON for this run UUID")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "--limit must be > 0")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.RequireDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("runs command failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	if uuid := strings.TrimSpace(*show); uuid != "" {
		run, err := pool.GetGraphRun(ctx, uuid)
		if err != nil {
			if db.IsNoRows(err) {
				fmt.Fprintf(os.Stderr, "No run stored with uuid %s\n", uuid)
				return 1
			}
			logger.Error().Err(err).Str("run_uuid", uuid).Msg("get graph run failed")
			fmt.Fprintf(os.Stderr, "Failed to fetch run: %v\n", err)
			return 1
		}
		os.Stdout.Write(run.Graph)
		fmt.Println()
		return 0
	}

	runs, err := pool.ListGraphRuns(ctx, strings.TrimSpace(*source), *limit)
	if err != nil {
		logger.Error().Err(err).Msg("list graph runs failed")
		fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
		return 1
	}

	if len(runs) == 0 {
		fmt.Println("no runs stored")
		return 0
	}

	for _, run := range runs {
		fmt.Printf(
			"run=%s source=%s created_at=%s tabs=%d groups=%d edges=%d duplicates=%d errors=%d\n",
			run.RunUUID,
			run.Source,
			run.CreatedAt,
			run.TabCount,
			run.GroupCount,
			run.EdgeCount,
			run.DupeCount,
			run.ErrorCount,
		)
	}
	return 0
}
