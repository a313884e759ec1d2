package graph

import (
	"math"
	"sort"
	"strings"
)

// ComputeIDF derives inverse document frequencies over per-document
// token multisets as ln((1+N)/(1+df))+1, counting each token once per
// document.
func ComputeIDF(docs [][]string) map[string]float64 {
	df := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	docCount := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for token, count := range df {
		idf[token] = math.Log((1+docCount)/(1+float64(count))) + 1
	}
	return idf
}

// TopTFIDFTerms scores a pooled token multiset by term frequency times
// IDF and returns the up-to-max best terms. Ties break toward earlier
// first appearance.
func TopTFIDFTerms(tokens []string, idf map[string]float64, max int) []string {
	if max <= 0 || len(tokens) == 0 {
		return nil
	}

	tf := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if _, ok := tf[token]; !ok {
			firstSeen[token] = i
			order = append(order, token)
		}
		tf[token]++
	}

	score := func(token string) float64 {
		return float64(tf[token]) * idf[token]
	}
	sort.SliceStable(order, func(i, j int) bool {
		si, sj := score(order[i]), score(order[j])
		if si != sj {
			return si > sj
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > max {
		order = order[:max]
	}
	return order
}

// LabelGroup names a group from its primary members: the dominant
// domain when one accounts for the majority share of members, otherwise
// the top TF-IDF terms of the pooled member tokens, otherwise "group".
func LabelGroup(members []*TabRecord, idf map[string]float64) string {
	if len(members) > 0 {
		counts := make(map[string]int, len(members))
		firstSeen := make(map[string]int, len(members))
		best := ""
		for i, tab := range members {
			if tab.Domain == "" {
				continue
			}
			if _, ok := counts[tab.Domain]; !ok {
				firstSeen[tab.Domain] = i
			}
			counts[tab.Domain]++
			if best == "" ||
				counts[tab.Domain] > counts[best] ||
				(counts[tab.Domain] == counts[best] && firstSeen[tab.Domain] < firstSeen[best]) {
				best = tab.Domain
			}
		}
		if best != "" && float64(counts[best])/float64(len(members)) >= domainLabelMajorityFrac {
			return best
		}
	}

	var tokens []string
	for _, tab := range members {
		tokens = append(tokens, tab.Tokens...)
	}
	if terms := TopTFIDFTerms(tokens, idf, DefaultLabelTermCount); len(terms) > 0 {
		return strings.Join(terms, " / ")
	}
	return "group"
}
