package graph

import (
	"sort"
	"strings"
)

// stopwords are dropped during tokenization, together with any token
// shorter than three characters.
var stopwords = buildStopwords(`
a about above after again against all also although always am among an and
another any anything are around as at away back be became because become been
before being below between both but by came can come could did do does doing
down during each every few for from further get got had has have having he
her here hers herself him himself his how however i if in into is it its
itself just like made make many may me might more most much must my myself
never new no nor not now of off on once one only or other our ours ourselves
out over own said same see seems shall she should since so some still such
take than that the their theirs them themselves then there these they thing
things this those through to too took toward under until up upon use used
using very via want was way we well went were what when where which while who
whom why will with within without would yet you your yours yourself
yourselves
`)

func buildStopwords(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text, replaces runs of anything outside [a-z0-9]
// with whitespace, and returns the surviving tokens: at least three
// characters and not a stopword. The result is a multiset; duplicates
// are preserved in order of appearance.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) < 3 {
			continue
		}
		if _, ok := stopwords[p]; ok {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// ExtractKeywords returns the up-to-max most frequent tokens of the
// text. Ties break toward earlier first appearance so the result is
// deterministic.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	tokens := Tokenize(text)
	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if _, ok := counts[token]; !ok {
			firstSeen[token] = i
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > max {
		order = order[:max]
	}
	return order
}
