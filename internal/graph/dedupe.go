package graph

import "sort"

// ResolveDuplicates partitions tabs into near-duplicate clusters and
// selects one primary per cluster. Two tabs land in one cluster when
// their canonical URLs are equal, or when they share a non-empty domain
// and their fingerprints are within hammingThreshold bits of each other;
// the relation closes transitively through union-find. The primary is
// the member with the smallest id. Non-primary members get duplicate_of
// set (single-hop, always to the primary) and contribute their raw URL
// to the primary's alias set.
//
// Tabs must be ordered by ascending id with tabs[i].ID == i. The
// returned map resolves any id to its primary id (identity for
// primaries); the int is the total duplicate count.
func ResolveDuplicates(tabs []*TabRecord, hammingThreshold int) (map[int]int, int) {
	uf := newUnionFind(len(tabs))

	canonicalSeen := make(map[string]int, len(tabs))
	for idx, tab := range tabs {
		canonical := tab.CanonicalURL
		if canonical == "" {
			canonical = CanonicalizeURL(tab.URL)
			tab.CanonicalURL = canonical
		}
		if canonical == "" {
			continue
		}
		if first, ok := canonicalSeen[canonical]; ok {
			uf.union(first, idx)
		} else {
			canonicalSeen[canonical] = idx
		}
	}

	for i := 0; i < len(tabs); i++ {
		if tabs[i].Fingerprint == nil || tabs[i].Domain == "" {
			continue
		}
		for j := i + 1; j < len(tabs); j++ {
			if tabs[j].Fingerprint == nil || tabs[j].Domain != tabs[i].Domain {
				continue
			}
			if HammingDistance(*tabs[i].Fingerprint, *tabs[j].Fingerprint) <= hammingThreshold {
				uf.union(i, j)
			}
		}
	}

	clusters := make(map[int][]int, len(tabs))
	roots := make([]int, 0, len(tabs))
	for idx := range tabs {
		root := uf.find(idx)
		if _, ok := clusters[root]; !ok {
			roots = append(roots, root)
		}
		clusters[root] = append(clusters[root], idx)
	}

	primaryOf := make(map[int]int, len(tabs))
	duplicates := 0
	for _, root := range roots {
		members := clusters[root]
		primary := members[0]
		for _, idx := range members {
			if idx < primary {
				primary = idx
			}
		}

		primaryTab := tabs[primary]
		var aliases []string
		for _, idx := range members {
			primaryOf[idx] = primary
			if idx == primary {
				continue
			}
			duplicates++
			dup := tabs[idx]
			p := primary
			dup.DuplicateOf = &p
			if dup.URL != "" {
				aliases = append(aliases, dup.URL)
			}
			if primaryTab.CanonicalURL == "" && dup.CanonicalURL != "" {
				primaryTab.CanonicalURL = dup.CanonicalURL
			}
		}
		if len(aliases) > 0 {
			primaryTab.Aliases = mergeAliases(primaryTab.Aliases, aliases)
			for _, idx := range members {
				if idx != primary && tabs[idx].CanonicalURL == "" {
					tabs[idx].CanonicalURL = primaryTab.CanonicalURL
				}
			}
		}
	}

	return primaryOf, duplicates
}

func mergeAliases(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, url := range existing {
		seen[url] = struct{}{}
	}
	for _, url := range added {
		seen[url] = struct{}{}
	}

	merged := make([]string, 0, len(seen))
	for url := range seen {
		merged = append(merged, url)
	}
	sort.Strings(merged)
	return merged
}
