// Package graph builds a deduplicated similarity graph from enriched
// browser-tab records: near-duplicate tabs are merged, related tabs are
// clustered into labeled groups, and pairwise relatedness is exposed as
// weighted edges. Every function in this package is a pure function of
// its inputs; the package performs no I/O.
package graph

import "time"

// SchemaVersion tags the output graph format.
const SchemaVersion = 1

// Edge reasons.
const (
	ReasonSimilarity       = "similarity"
	ReasonSimilarityDomain = "similarity+domain"
)

// GroupIDUnassigned marks a tab that belongs to no group.
const GroupIDUnassigned = -1

// TabRecord is one enriched browser tab. IDs are assigned in input order
// and never reassigned. Enrichment (summary, keywords, embedding) happens
// upstream; this package only fills canonical_url, fingerprint, tokens,
// duplicate_of, aliases and group_id.
type TabRecord struct {
	ID           int       `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Browser      string    `json:"browser,omitempty"`
	WindowID     *int      `json:"window_id,omitempty"`
	Domain       string    `json:"domain"`
	CanonicalURL string    `json:"canonical_url"`
	Summary      string    `json:"summary,omitempty"`
	TextExcerpt  string    `json:"text_excerpt,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
	Embedding    []float64 `json:"embedding,omitempty"`
	Fingerprint  *uint64   `json:"fingerprint,omitempty"`
	DuplicateOf  *int      `json:"duplicate_of,omitempty"`
	Aliases      []string  `json:"aliases,omitempty"`
	GroupID      int       `json:"group_id"`
	Error        string    `json:"error,omitempty"`

	// Tokens is the derived token multiset used for fingerprinting and
	// TF-IDF labeling. It is ephemeral and never serialized.
	Tokens []string `json:"-"`
}

// IsPrimary reports whether the tab represents its duplicate cluster.
func (t *TabRecord) IsPrimary() bool {
	return t != nil && t.DuplicateOf == nil
}

// Edge connects two primary tabs whose similarity reached the edge
// threshold. SourceID < TargetID always holds. Weight can exceed 1.0
// because the same-domain bonus is additive and unclamped.
type Edge struct {
	SourceID int     `json:"source_id"`
	TargetID int     `json:"target_id"`
	Weight   float64 `json:"weight"`
	Reason   string  `json:"reason"`
}

// Group is one cluster of related tabs. TabIDs includes duplicates; the
// label is computed over primary members only.
type Group struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	TabIDs []int  `json:"tab_ids"`
	Size   int    `json:"size"`
}

// Stats summarizes one graph build.
type Stats struct {
	TabCount   int `json:"tab_count"`
	GroupCount int `json:"group_count"`
	EdgeCount  int `json:"edge_count"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Graph is the fully derived output of one build. It is rebuilt from
// scratch on every run; no cross-run identity is preserved.
type Graph struct {
	SchemaVersion int          `json:"schema_version"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Source        string       `json:"source"`
	Stats         Stats        `json:"stats"`
	Tabs          []*TabRecord `json:"tabs"`
	Groups        []Group      `json:"groups"`
	Edges         []Edge       `json:"edges"`
}
