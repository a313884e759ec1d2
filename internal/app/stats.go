package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"horse.fit/tabgraph/internal/graph"
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	input := fs.String("input", "graph.json", "Path to a built graph JSON file")
	topDomains := fs.Int("top-domains", 10, "How many domains to list by tab count")
	asJSON := fs.Bool("json", false, "Print the stats block as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *topDomains < 0 {
		fmt.Fprintln(os.Stderr, "--top-domains must be >= 0")
		return 2
	}

	inputPath := strings.TrimSpace(*input)
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read graph: %v\n", err)
		return 1
	}

	var g graph.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode graph %s: %v\n", inputPath, err)
		return 1
	}
	if g.SchemaVersion != graph.SchemaVersion {
		fmt.Fprintf(os.Stderr, "Unsupported graph schema version %d\n", g.SchemaVersion)
		return 1
	}

	if *asJSON {
		encoded, err := json.MarshalIndent(map[string]any{
			"source":       g.Source,
			"generated_at": g.GeneratedAt,
			"stats":        g.Stats,
		}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode stats: %v\n", err)
			return 1
		}
		fmt.Println(string(encoded))
		return 0
	}

	fmt.Printf("source=%s generated_at=%s\n", g.Source, g.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Printf(
		"tabs=%d groups=%d edges=%d duplicates=%d errors=%d\n",
		g.Stats.TabCount,
		g.Stats.GroupCount,
		g.Stats.EdgeCount,
		g.Stats.Duplicates,
		g.Stats.Errors,
	)

	for _, group := range g.Groups {
		fmt.Printf("group id=%d size=%d label=%q\n", group.ID, group.Size, group.Label)
	}

	if *topDomains > 0 {
		for _, row := range domainCounts(g.Tabs, *topDomains) {
			fmt.Printf("domain %s tabs=%d\n", row.domain, row.count)
		}
	}

	return 0
}

type domainCount struct {
	domain string
	count  int
}

// domainCounts ranks domains by tab count, ties broken by first
// appearance over the tab list.
func domainCounts(tabs []*graph.TabRecord, limit int) []domainCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0, 16)
	for i, tab := range tabs {
		if tab == nil || tab.Domain == "" {
			continue
		}
		if _, ok := counts[tab.Domain]; !ok {
			firstSeen[tab.Domain] = i
			order = append(order, tab.Domain)
		}
		counts[tab.Domain]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	rows := make([]domainCount, 0, limit)
	for _, domain := range order {
		if len(rows) >= limit {
			break
		}
		rows = append(rows, domainCount{domain: domain, count: counts[domain]})
	}
	return rows
}
