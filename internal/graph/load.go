package graph

import (
	"net/url"
	"strings"

	payloadschema "horse.fit/tabgraph/schema"
)

// LoadFromPayload flattens a validated export payload into tab records,
// assigning ids in input order. Entries with a blank URL are skipped.
// A declared canonical URL is resolved against the tab's own URL before
// canonicalization and takes precedence over the raw URL.
func LoadFromPayload(payload *payloadschema.TabsPayload) []*TabRecord {
	if payload == nil {
		return []*TabRecord{}
	}

	tabs := make([]*TabRecord, 0, len(payload.Tabs))
	for _, entry := range payload.Tabs {
		rawURL := strings.TrimSpace(entry.URL)
		if rawURL == "" {
			continue
		}

		canonical := ""
		if declared := strings.TrimSpace(entry.DeclaredCanonical); declared != "" {
			canonical = CanonicalizeURL(resolveAgainst(rawURL, declared))
		}
		if canonical == "" {
			canonical = CanonicalizeURL(rawURL)
		}

		domain := strings.TrimSpace(strings.ToLower(entry.Domain))
		if domain == "" {
			domain = NormalizeDomain(rawURL)
		}

		tabs = append(tabs, &TabRecord{
			ID:           len(tabs),
			URL:          rawURL,
			Title:        strings.TrimSpace(entry.Title),
			Browser:      strings.TrimSpace(entry.Browser),
			WindowID:     entry.WindowID,
			Domain:       domain,
			CanonicalURL: canonical,
			Summary:      strings.TrimSpace(entry.Summary),
			TextExcerpt:  entry.TextExcerpt,
			Keywords:     entry.Keywords,
			Embedding:    entry.Embedding,
			Error:        strings.TrimSpace(entry.Error),
			GroupID:      GroupIDUnassigned,
		})
	}
	return tabs
}

func resolveAgainst(base, ref string) string {
	parsedBase, err := url.Parse(base)
	if err != nil {
		return ref
	}
	resolved, err := parsedBase.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
