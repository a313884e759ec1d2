package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/tabgraph/internal/cli"
	"horse.fit/tabgraph/internal/config"
	"horse.fit/tabgraph/internal/db"
	"horse.fit/tabgraph/internal/httpapi"
	"horse.fit/tabgraph/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	graphPath := fs.String("graph", "", "Serve this graph JSON file")
	fromStore := fs.Bool("from-store", false, "Serve the latest graph run from the database")
	source := fs.String("source", "", "Restrict store lookups to this source")
	host := fs.String("host", "", "Host interface to bind (default from config)")
	port := fs.Int("port", 0, "HTTP port (default from config)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cleanGraphPath := strings.TrimSpace(*graphPath)
	if cleanGraphPath == "" && !*fromStore {
		fmt.Fprintln(os.Stderr, "either --graph or --from-store is required")
		return 2
	}
	if cleanGraphPath != "" && *fromStore {
		fmt.Fprintln(os.Stderr, "--graph and --from-store are mutually exclusive")
		return 2
	}
	if *port < 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
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

	var graphSource httpapi.GraphSource
	var pool *db.Pool

	if *fromStore {
		if err := cfg.RequireDatabase(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}

		dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dbCancel()

		pool, err = db.NewPool(dbCtx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("serve failed to connect to database")
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			return 1
		}
		defer pool.Close()

		graphSource = httpapi.NewStoreSource(pool, strings.TrimSpace(*source))
	} else {
		if _, err := os.Stat(cleanGraphPath); err != nil {
			fmt.Fprintf(os.Stderr, "Graph file is not readable: %v\n", err)
			return 1
		}
		graphSource = httpapi.NewFileSource(cleanGraphPath)
	}

	serveHost := strings.TrimSpace(*host)
	if serveHost == "" {
		serveHost = cfg.HTTPHost
	}
	servePort := *port
	if servePort == 0 {
		servePort = cfg.HTTPPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(graphSource, logger, httpapi.Options{
		Host:            serveHost,
		Port:            servePort,
		AllowedOrigins:  cfg.CORSAllowedOriginsList(),
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", serveHost).Int("port", servePort).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
