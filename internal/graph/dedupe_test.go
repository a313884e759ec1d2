package graph

import (
	"reflect"
	"testing"
)

func newTab(id int, rawURL, domain string, tokens ...string) *TabRecord {
	tab := &TabRecord{
		ID:      id,
		URL:     rawURL,
		Domain:  domain,
		GroupID: GroupIDUnassigned,
		Tokens:  tokens,
	}
	if len(tokens) > 0 {
		if fp, ok := Fingerprint(tokens); ok {
			tab.Fingerprint = &fp
		}
	}
	return tab
}

func TestResolveDuplicates_CanonicalEquality(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		newTab(0, "https://example.com/article", "example.com"),
		newTab(1, "https://www.example.com/article/?utm_source=mail", "example.com"),
		newTab(2, "https://other.org/post", "other.org"),
	}

	primaryOf, duplicates := ResolveDuplicates(tabs, DefaultDedupeHamming)
	if duplicates != 1 {
		t.Fatalf("unexpected duplicate count: got %d want 1", duplicates)
	}
	if primaryOf[1] != 0 {
		t.Fatalf("expected tab 1 to resolve to primary 0, got %d", primaryOf[1])
	}
	if tabs[1].DuplicateOf == nil || *tabs[1].DuplicateOf != 0 {
		t.Fatalf("expected duplicate_of=0 on tab 1, got %v", tabs[1].DuplicateOf)
	}
	if tabs[2].DuplicateOf != nil {
		t.Fatalf("expected tab 2 to stay primary")
	}
	if !reflect.DeepEqual(tabs[0].Aliases, []string{"https://www.example.com/article/?utm_source=mail"}) {
		t.Fatalf("unexpected aliases on primary: %v", tabs[0].Aliases)
	}
}

func TestResolveDuplicates_FingerprintWithinThreshold(t *testing.T) {
	t.Parallel()

	tokens := []string{"go", "scheduler", "preemption", "runtime", "deep", "dive"}
	a := newTab(0, "https://blog.example.com/one", "blog.example.com", tokens...)
	b := newTab(1, "https://blog.example.com/two", "blog.example.com", tokens...)

	_, duplicates := ResolveDuplicates([]*TabRecord{a, b}, 0)
	if duplicates != 1 {
		t.Fatalf("identical fingerprints on one domain must merge, got %d duplicates", duplicates)
	}
}

func TestResolveDuplicates_DifferentDomainsNeverFingerprintMerge(t *testing.T) {
	t.Parallel()

	tokens := []string{"go", "scheduler", "preemption", "runtime"}
	a := newTab(0, "https://a.example/one", "a.example", tokens...)
	b := newTab(1, "https://b.example/two", "b.example", tokens...)

	_, duplicates := ResolveDuplicates([]*TabRecord{a, b}, 64)
	if duplicates != 0 {
		t.Fatalf("cross-domain tabs must not fingerprint-merge, got %d duplicates", duplicates)
	}
}

func TestResolveDuplicates_TransitiveClusterSingleHop(t *testing.T) {
	t.Parallel()

	// 0 and 1 share a canonical URL; 1 and 2 share a fingerprint. All
	// three must land in one cluster with the minimum id as primary and
	// duplicate_of pointing straight at it.
	tokens := []string{"kernel", "release", "notes", "driver"}
	tabs := []*TabRecord{
		newTab(0, "https://example.com/page", "example.com"),
		newTab(1, "https://example.com/page?utm_medium=social", "example.com", tokens...),
		newTab(2, "https://example.com/page-copy", "example.com", tokens...),
	}

	primaryOf, duplicates := ResolveDuplicates(tabs, 0)
	if duplicates != 2 {
		t.Fatalf("unexpected duplicate count: got %d want 2", duplicates)
	}
	for id := 1; id <= 2; id++ {
		if primaryOf[id] != 0 {
			t.Fatalf("expected tab %d to resolve to primary 0, got %d", id, primaryOf[id])
		}
		if tabs[id].DuplicateOf == nil || *tabs[id].DuplicateOf != 0 {
			t.Fatalf("expected duplicate_of=0 on tab %d, got %v", id, tabs[id].DuplicateOf)
		}
	}
}

func TestResolveDuplicates_PrimaryIsMinID(t *testing.T) {
	t.Parallel()

	tabs := []*TabRecord{
		newTab(0, "https://solo.example/x", "solo.example"),
		newTab(1, "https://example.com/a", "example.com"),
		newTab(2, "https://example.com/a?gclid=zz", "example.com"),
	}

	primaryOf, _ := ResolveDuplicates(tabs, DefaultDedupeHamming)
	if primaryOf[2] != 1 {
		t.Fatalf("expected primary 1 for tab 2, got %d", primaryOf[2])
	}
	if primaryOf[1] != 1 {
		t.Fatalf("primary must resolve to itself, got %d", primaryOf[1])
	}
}
