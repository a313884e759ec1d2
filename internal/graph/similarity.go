package graph

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CosineSimilarity returns the cosine of two embedding vectors, or 0
// when either is missing, their dimensions differ, or either has zero
// norm.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard returns the set overlap of two keyword lists. Either side
// empty scores 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, term := range a {
		setA[term] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, term := range b {
		setB[term] = struct{}{}
	}

	intersection := 0
	for term := range setA {
		if _, ok := setB[term]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SimilarityScore scores one unordered tab pair: cosine over embeddings
// when both carry comparable vectors, otherwise Jaccard over keyword
// sets (also when cosine evaluates to exactly 0). Two tabs on the same
// non-empty domain additionally receive domainBonus — added without
// clamping, so the result can exceed 1.0.
func SimilarityScore(a, b *TabRecord, domainBonus float64) float64 {
	score := CosineSimilarity(a.Embedding, b.Embedding)
	if score == 0 {
		score = Jaccard(a.Keywords, b.Keywords)
	}
	if a.Domain != "" && a.Domain == b.Domain {
		score += domainBonus
	}
	return score
}

// BuildSimilarityMatrix computes the symmetric pairwise score matrix
// over tabs (diagonal unused). Rows are distributed over at most
// workers goroutines; each unordered pair is computed exactly once by
// the row of its smaller index, so workers write disjoint cells and the
// result is identical to a sequential computation. workers <= 0 means
// one per CPU.
func BuildSimilarityMatrix(tabs []*TabRecord, domainBonus float64, workers int) [][]float64 {
	n := len(tabs)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	if n < 2 {
		return matrix
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		row := i
		g.Go(func() error {
			for j := row + 1; j < n; j++ {
				score := SimilarityScore(tabs[row], tabs[j], domainBonus)
				matrix[row][j] = score
				matrix[j][row] = score
			}
			return nil
		})
	}
	_ = g.Wait()

	return matrix
}
