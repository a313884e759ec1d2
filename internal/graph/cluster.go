package graph

import "sort"

// BuildGroups partitions primary tabs into clusters with union-find,
// applying the configured strategies additively (a strategy can merge,
// never un-merge):
//
//   - domain grouping unions every tab of a domain carrying at least
//     max(2, DomainGroupMin) tabs, independent of similarity;
//   - mutual-KNN unions a pair only when each tab ranks in the other's
//     top-K neighbors at or above GroupThreshold, which keeps one
//     broadly-similar outlier from bridging unrelated clusters;
//   - with MutualKNN off, any pair at or above GroupThreshold merges.
//
// The returned partitions are numbered in order of first discovery when
// scanning tabs by ascending index; the numbering carries no similarity
// meaning. The second result maps each tab index to its partition.
func BuildGroups(tabs []*TabRecord, matrix [][]float64, opts Options) ([][]int, []int) {
	n := len(tabs)
	uf := newUnionFind(n)

	if opts.DomainGroup {
		minSize := opts.DomainGroupMin
		if minSize < 2 {
			minSize = 2
		}

		domainOrder := make([]string, 0, n)
		domainMembers := make(map[string][]int, n)
		for idx, tab := range tabs {
			if tab.Domain == "" {
				continue
			}
			if _, ok := domainMembers[tab.Domain]; !ok {
				domainOrder = append(domainOrder, tab.Domain)
			}
			domainMembers[tab.Domain] = append(domainMembers[tab.Domain], idx)
		}
		for _, domain := range domainOrder {
			members := domainMembers[domain]
			if len(members) < minSize {
				continue
			}
			for _, idx := range members[1:] {
				uf.union(members[0], idx)
			}
		}
	}

	if opts.MutualKNN {
		neighbors := make([]map[int]struct{}, n)
		ranked := make([][]int, n)
		for i := 0; i < n; i++ {
			candidates := make([]int, 0, n-1)
			for j := 0; j < n; j++ {
				if j != i && matrix[i][j] >= opts.GroupThreshold {
					candidates = append(candidates, j)
				}
			}
			sort.SliceStable(candidates, func(a, b int) bool {
				return matrix[i][candidates[a]] > matrix[i][candidates[b]]
			})
			if opts.KNNK > 0 && len(candidates) > opts.KNNK {
				candidates = candidates[:opts.KNNK]
			}

			set := make(map[int]struct{}, len(candidates))
			for _, j := range candidates {
				set[j] = struct{}{}
			}
			ranked[i] = candidates
			neighbors[i] = set
		}

		for i := 0; i < n; i++ {
			for _, j := range ranked[i] {
				if _, mutual := neighbors[j][i]; mutual {
					uf.union(i, j)
				}
			}
		}
	} else {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if matrix[i][j] >= opts.GroupThreshold {
					uf.union(i, j)
				}
			}
		}
	}

	groupOf := make([]int, n)
	var groups [][]int
	rootGroup := make(map[int]int, n)
	for idx := 0; idx < n; idx++ {
		root := uf.find(idx)
		gid, ok := rootGroup[root]
		if !ok {
			gid = len(groups)
			rootGroup[root] = gid
			groups = append(groups, nil)
		}
		groups[gid] = append(groups[gid], idx)
		groupOf[idx] = gid
	}

	return groups, groupOf
}
