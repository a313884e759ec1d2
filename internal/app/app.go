package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "build":
		return runBuild(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "stats":
		return runStats(args[1:])
	case "runs":
		return runRuns(args[1:])
	case "serve":
		return runServe(args[1:])
	case "health":
		return runHealth(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "tabgraph CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tabgraph <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  build     Build a tab similarity graph from an enriched tab export")
	fmt.Fprintln(os.Stderr, "  validate  Validate tab export JSON files against the v1 schema")
	fmt.Fprintln(os.Stderr, "  stats     Summarize a built graph file")
	fmt.Fprintln(os.Stderr, "  runs      List graph builds persisted in the run store")
	fmt.Fprintln(os.Stderr, "  serve     Start the Echo API server over a graph file or the run store")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"tabgraph <command> -h\" for command-specific flags.")
}
