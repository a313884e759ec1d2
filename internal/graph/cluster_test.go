package graph

import (
	"reflect"
	"testing"
)

func clusterOptions() Options {
	opts := DefaultOptions()
	opts.DomainGroup = false
	opts.MutualKNN = false
	return opts
}

func TestBuildGroups_ThresholdMerge(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "a.example"},
		{ID: 1, Domain: "b.example"},
		{ID: 2, Domain: "c.example"},
	}
	matrix := [][]float64{
		{0, 0.5, 0},
		{0.5, 0, 0},
		{0, 0, 0},
	}

	groups, groupOf := BuildGroups(tabs, matrix, clusterOptions())
	if len(groups) != 2 {
		t.Fatalf("unexpected group count: got %d want 2", len(groups))
	}
	if !reflect.DeepEqual(groups[0], []int{0, 1}) {
		t.Fatalf("unexpected first group: %v", groups[0])
	}
	if groupOf[2] != 1 {
		t.Fatalf("expected singleton group 1 for tab 2, got %d", groupOf[2])
	}
}

func TestBuildGroups_BelowThresholdStaysApart(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "a.example"},
		{ID: 1, Domain: "b.example"},
	}
	matrix := [][]float64{
		{0, 0.24},
		{0.24, 0},
	}

	groups, _ := BuildGroups(tabs, matrix, clusterOptions())
	if len(groups) != 2 {
		t.Fatalf("pairs below the threshold must not merge, got %d groups", len(groups))
	}
}

func TestBuildGroups_DomainGroupingIgnoresSimilarity(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "docs.example"},
		{ID: 1, Domain: "docs.example"},
		{ID: 2, Domain: "other.example"},
	}
	matrix := [][]float64{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	}

	opts := clusterOptions()
	opts.DomainGroup = true

	groups, groupOf := BuildGroups(tabs, matrix, opts)
	if len(groups) != 2 {
		t.Fatalf("unexpected group count: got %d want 2", len(groups))
	}
	if groupOf[0] != groupOf[1] {
		t.Fatalf("same-domain tabs must share a group: %d vs %d", groupOf[0], groupOf[1])
	}
	if groupOf[2] == groupOf[0] {
		t.Fatalf("other-domain tab must stay apart")
	}
}

func TestBuildGroups_DomainGroupMinRespected(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "docs.example"},
		{ID: 1, Domain: "docs.example"},
		{ID: 2, Domain: "docs.example"},
	}
	matrix := make([][]float64, 3)
	for i := range matrix {
		matrix[i] = make([]float64, 3)
	}

	opts := clusterOptions()
	opts.DomainGroup = true
	opts.DomainGroupMin = 4

	groups, _ := BuildGroups(tabs, matrix, opts)
	if len(groups) != 3 {
		t.Fatalf("domain below min size must not group, got %d groups", len(groups))
	}
}

func TestBuildGroups_MutualKNNRequiresBothSides(t *testing.T) {
	t.Parallel()

	// Tab 0 has K strong neighbors; tab 3 ranks 0 in its top-K but does
	// not make 0's top-K, so the 0-3 merge must not happen.
	tabs := []*TabRecord{
		{ID: 0, Domain: "a.example"},
		{ID: 1, Domain: "b.example"},
		{ID: 2, Domain: "c.example"},
		{ID: 3, Domain: "d.example"},
	}
	matrix := [][]float64{
		{0, 0.9, 0.8, 0.3},
		{0.9, 0, 0, 0},
		{0.8, 0, 0, 0},
		{0.3, 0, 0, 0},
	}

	opts := clusterOptions()
	opts.MutualKNN = true
	opts.KNNK = 2

	_, groupOf := BuildGroups(tabs, matrix, opts)
	if groupOf[0] != groupOf[1] || groupOf[0] != groupOf[2] {
		t.Fatalf("mutual pairs must merge: %v", groupOf)
	}
	if groupOf[3] == groupOf[0] {
		t.Fatalf("one-sided neighbor must not merge: %v", groupOf)
	}
}

func TestBuildGroups_MutualKNNNeverMergesMoreThanThreshold(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "a.example"},
		{ID: 1, Domain: "b.example"},
		{ID: 2, Domain: "c.example"},
		{ID: 3, Domain: "d.example"},
		{ID: 4, Domain: "e.example"},
	}
	matrix := [][]float64{
		{0, 0.9, 0.8, 0.3, 0},
		{0.9, 0, 0.7, 0, 0},
		{0.8, 0.7, 0, 0, 0},
		{0.3, 0, 0, 0, 0.26},
		{0, 0, 0, 0.26, 0},
	}

	knnOpts := clusterOptions()
	knnOpts.MutualKNN = true
	knnOpts.KNNK = 2

	_, knnGroupOf := BuildGroups(tabs, matrix, knnOpts)
	_, thresholdGroupOf := BuildGroups(tabs, matrix, clusterOptions())

	for i := range tabs {
		for j := range tabs {
			knnSame := knnGroupOf[i] == knnGroupOf[j]
			thresholdSame := thresholdGroupOf[i] == thresholdGroupOf[j]
			if knnSame && !thresholdSame {
				t.Fatalf("mutual-KNN merged (%d,%d) but the threshold fallback did not", i, j)
			}
		}
	}
}

func TestBuildGroups_NumberingByFirstDiscovery(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		{ID: 0, Domain: "a.example"},
		{ID: 1, Domain: "b.example"},
		{ID: 2, Domain: "a.example"},
	}
	matrix := [][]float64{
		{0, 0, 0.9},
		{0, 0, 0},
		{0.9, 0, 0},
	}

	groups, groupOf := BuildGroups(tabs, matrix, clusterOptions())
	if groupOf[0] != 0 || groupOf[2] != 0 {
		t.Fatalf("cluster containing tab 0 must be group 0: %v", groupOf)
	}
	if groupOf[1] != 1 {
		t.Fatalf("tab 1 must open group 1: %v", groupOf)
	}
	if !reflect.DeepEqual(groups[0], []int{0, 2}) {
		t.Fatalf("unexpected group 0 membership: %v", groups[0])
	}
}
