package graph

import (
	"math"
	"strings"

	"horse.fit/tabgraph/internal/globaltime"
)

// Build runs the full graph construction over enriched tab records:
// canonicalize, fill derived fields the input left empty, resolve
// near-duplicates, score primary pairs, emit edges and groups, label
// the groups, and propagate group ids to duplicates. Build mutates the
// given records (ids, canonical URLs, duplicate and group assignments)
// and is total over any well-typed input; an empty slice yields an
// empty graph.
func Build(tabs []*TabRecord, opts Options) *Graph {
	if tabs == nil {
		tabs = []*TabRecord{}
	}

	errors := 0
	for i, tab := range tabs {
		tab.ID = i
		tab.GroupID = GroupIDUnassigned
		if tab.Error != "" {
			errors++
		}
		if tab.CanonicalURL == "" {
			tab.CanonicalURL = CanonicalizeURL(tab.URL)
		}
		if tab.Domain == "" {
			tab.Domain = NormalizeDomain(tab.URL)
		}
		if len(tab.Tokens) == 0 {
			tab.Tokens = Tokenize(strings.Join([]string{tab.Title, tab.Summary, tab.TextExcerpt}, " "))
		}
		if tab.Fingerprint == nil {
			if fp, ok := Fingerprint(tab.Tokens); ok {
				tab.Fingerprint = &fp
			}
		}
		if len(tab.Keywords) == 0 {
			tab.Keywords = ExtractKeywords(tab.Title+" "+tab.Summary, opts.KeywordCount)
		}
	}

	primaryOf, duplicates := ResolveDuplicates(tabs, opts.DedupeHamming)

	primaries := make([]*TabRecord, 0, len(tabs))
	primaryIndex := make(map[int]int, len(tabs))
	for _, tab := range tabs {
		if tab.IsPrimary() {
			primaryIndex[tab.ID] = len(primaries)
			primaries = append(primaries, tab)
		}
	}

	docs := make([][]string, len(primaries))
	for i, tab := range primaries {
		docs[i] = tab.Tokens
	}
	idf := ComputeIDF(docs)

	matrix := BuildSimilarityMatrix(primaries, opts.DomainBonus, opts.Workers)

	edges := make([]Edge, 0)
	for i := 0; i < len(primaries); i++ {
		for j := i + 1; j < len(primaries); j++ {
			weight := matrix[i][j]
			if weight < opts.EdgeThreshold {
				continue
			}
			reason := ReasonSimilarity
			if primaries[i].Domain != "" && primaries[i].Domain == primaries[j].Domain {
				reason = ReasonSimilarityDomain
			}
			edges = append(edges, Edge{
				SourceID: primaries[i].ID,
				TargetID: primaries[j].ID,
				Weight:   math.Round(weight*1000) / 1000,
				Reason:   reason,
			})
		}
	}

	partitions, groupOf := BuildGroups(primaries, matrix, opts)

	for _, tab := range tabs {
		primaryID := primaryOf[tab.ID]
		if idx, ok := primaryIndex[primaryID]; ok {
			tab.GroupID = groupOf[idx]
		}
	}

	groups := make([]Group, len(partitions))
	for gid, memberIdxs := range partitions {
		members := make([]*TabRecord, len(memberIdxs))
		for i, idx := range memberIdxs {
			members[i] = primaries[idx]
		}
		groups[gid] = Group{
			ID:    gid,
			Label: LabelGroup(members, idf),
		}
	}
	for _, tab := range tabs {
		if tab.GroupID >= 0 && tab.GroupID < len(groups) {
			groups[tab.GroupID].TabIDs = append(groups[tab.GroupID].TabIDs, tab.ID)
		}
	}
	for gid := range groups {
		groups[gid].Size = len(groups[gid].TabIDs)
	}

	return &Graph{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   globaltime.UTC(),
		Source:        opts.Source,
		Stats: Stats{
			TabCount:   len(tabs),
			GroupCount: len(groups),
			EdgeCount:  len(edges),
			Duplicates: duplicates,
			Errors:     errors,
		},
		Tabs:   tabs,
		Groups: groups,
		Edges:  edges,
	}
}
