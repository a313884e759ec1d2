package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"horse.fit/tabgraph/internal/cli"
	"horse.fit/tabgraph/internal/config"
	"horse.fit/tabgraph/internal/db"
	"horse.fit/tabgraph/internal/graph"
	"horse.fit/tabgraph/internal/logging"
	payloadschema "horse.fit/tabgraph/schema"
)

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	input := fs.String("input", "", "Path to the enriched tab export JSON (required)")
	output := fs.String("output", "graph.json", "Output path for the graph JSON, or - for stdout")
	pretty := fs.Bool("pretty", false, "Indent the output JSON")
	source := fs.String("source", "", "Source label stored in the graph (default: input base name)")
	store := fs.Bool("store", false, "Persist the build as a graph run (requires DATABASE_URL)")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")

	edgeThreshold := fs.Float64("edge-threshold", graph.DefaultEdgeThreshold, "Minimum similarity for an edge")
	groupThreshold := fs.Float64("group-threshold", graph.DefaultGroupThreshold, "Minimum similarity considered for grouping")
	domainBonus := fs.Float64("domain-bonus", graph.DefaultDomainBonus, "Additive same-domain similarity bonus")
	domainGroups := fs.Bool("domain-groups", true, "Group all tabs of a domain with enough members")
	domainGroupMin := fs.Int("domain-group-min", graph.DefaultDomainGroupMin, "Minimum tabs per domain for a domain group")
	mutualKNN := fs.Bool("mutual-knn", true, "Require mutual top-K neighborhood membership for similarity merges")
	knnK := fs.Int("knn-k", graph.DefaultKNNK, "Neighborhood size for mutual-KNN grouping")
	dedupeHamming := fs.Int("dedupe-hamming", graph.DefaultDedupeHamming, "Maximum fingerprint Hamming distance for near-duplicates")
	keywordCount := fs.Int("keywords", graph.DefaultKeywordCount, "Derived keywords per tab when the input carries none")
	workers := fs.Int("workers", 0, "Similarity workers (0 = one per CPU)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	inputPath := strings.TrimSpace(*input)
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "--input is required")
		return 2
	}
	if *edgeThreshold < 0 || *groupThreshold < 0 {
		fmt.Fprintln(os.Stderr, "thresholds must be >= 0")
		return 2
	}
	if *knnK <= 0 {
		fmt.Fprintln(os.Stderr, "--knn-k must be > 0")
		return 2
	}
	if *dedupeHamming < 0 {
		fmt.Fprintln(os.Stderr, "--dedupe-hamming must be >= 0")
		return 2
	}
	if *keywordCount <= 0 {
		fmt.Fprintln(os.Stderr, "--keywords must be > 0")
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

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		logger.Error().Err(err).Str("input", inputPath).Msg("read input failed")
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		return 1
	}

	payload, err := payloadschema.ValidateTabsPayload(json.RawMessage(raw))
	if err != nil {
		logger.Error().Err(err).Str("input", inputPath).Msg("payload validation failed")
		fmt.Fprintf(os.Stderr, "Input is not a valid tab export: %v\n", err)
		return 1
	}

	opts := graph.Options{
		Source:         strings.TrimSpace(*source),
		EdgeThreshold:  *edgeThreshold,
		GroupThreshold: *groupThreshold,
		DomainBonus:    *domainBonus,
		DomainGroup:    *domainGroups,
		DomainGroupMin: *domainGroupMin,
		MutualKNN:      *mutualKNN,
		KNNK:           *knnK,
		DedupeHamming:  *dedupeHamming,
		KeywordCount:   *keywordCount,
		Workers:        *workers,
	}
	if opts.Source == "" {
		if payload.Source != "" {
			opts.Source = payload.Source
		} else {
			opts.Source = filepath.Base(inputPath)
		}
	}

	tabs := graph.LoadFromPayload(payload)

	started := time.Now()
	g := graph.Build(tabs, opts)
	buildDuration := time.Since(started)

	encoded, err := encodeGraph(g, *pretty)
	if err != nil {
		logger.Error().Err(err).Msg("encode graph failed")
		fmt.Fprintf(os.Stderr, "Failed to encode graph: %v\n", err)
		return 1
	}

	if err := writeOutput(strings.TrimSpace(*output), encoded); err != nil {
		logger.Error().Err(err).Str("output", *output).Msg("write output failed")
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}

	logger.Info().
		Str("input", inputPath).
		Str("source", opts.Source).
		Int("tabs", g.Stats.TabCount).
		Int("groups", g.Stats.GroupCount).
		Int("edges", g.Stats.EdgeCount).
		Int("duplicates", g.Stats.Duplicates).
		Int("errors", g.Stats.Errors).
		Dur("build", buildDuration).
		Msg("graph build completed")
	fmt.Fprintf(
		os.Stderr,
		"build tabs=%d groups=%d edges=%d duplicates=%d errors=%d source=%s\n",
		g.Stats.TabCount,
		g.Stats.GroupCount,
		g.Stats.EdgeCount,
		g.Stats.Duplicates,
		g.Stats.Errors,
		opts.Source,
	)

	if !*store {
		return 0
	}

	if err := cfg.RequireDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot store run: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("build command failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		logger.Error().Err(err).Msg("encode options failed")
		fmt.Fprintf(os.Stderr, "Failed to encode options: %v\n", err)
		return 1
	}

	buildMS := int(buildDuration.Milliseconds())
	run, err := pool.InsertGraphRun(ctx, &db.GraphRun{
		Source:      opts.Source,
		GeneratedAt: g.GeneratedAt,
		TabCount:    g.Stats.TabCount,
		GroupCount:  g.Stats.GroupCount,
		EdgeCount:   g.Stats.EdgeCount,
		DupeCount:   g.Stats.Duplicates,
		ErrorCount:  g.Stats.Errors,
		Options:     optionsJSON,
		Graph:       encoded,
		BuildMS:     &buildMS,
	})
	if err != nil {
		logger.Error().Err(err).Msg("store graph run failed")
		fmt.Fprintf(os.Stderr, "Failed to store graph run: %v\n", err)
		return 1
	}

	logger.Info().Str("run_uuid", run.RunUUID).Msg("graph run stored")
	fmt.Fprintf(os.Stderr, "stored run_uuid=%s\n", run.RunUUID)
	return 0
}

func encodeGraph(g *graph.Graph, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(g, "", "  ")
	}
	return json.Marshal(g)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
