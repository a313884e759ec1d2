package graph

import "testing"

func TestCanonicalizeURL_StripsTrackingAndNormalizes(t *testing.T) {
	t.Parallel()

	got := CanonicalizeURL("https://WWW.Example.COM:443/news/path/?utm_source=abc&fbclid=123&b=2&a=1#section")
	if got != "https://example.com/news/path?a=1&b=2" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestCanonicalizeURL_EquivalentVariantsCollapse(t *testing.T) {
	t.Parallel()

	variants := []string{
		"https://example.com/article",
		"https://www.example.com/article/",
		"https://example.com:443/article?utm_campaign=x",
		"https://example.com/article#comments",
	}

	want := CanonicalizeURL(variants[0])
	for _, raw := range variants[1:] {
		if got := CanonicalizeURL(raw); got != want {
			t.Fatalf("variant %q canonicalized to %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalizeURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com",
		"https://www.example.com/a/b/?ref=x&z=1&a=2",
		"http://example.com:80/path/",
		"https://example.com/a%20b",
		"https://example.com/caf%C3%A9/",
		"https://example.com/G%C3%B6del?q=1",
		"not a url",
	}
	for _, raw := range inputs {
		once := CanonicalizeURL(raw)
		twice := CanonicalizeURL(once)
		if once != twice {
			t.Fatalf("canonicalization of %q not idempotent: %q != %q", raw, once, twice)
		}
	}
}

func TestCanonicalizeURL_KeepsPercentEncodedPath(t *testing.T) {
	t.Parallel()

	if got := CanonicalizeURL("https://example.com/a%20b/"); got != "https://example.com/a%20b" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := CanonicalizeURL("https://example.com/caf%C3%A9"); got != "https://example.com/caf%C3%A9" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestCanonicalizeURL_RootPathNormalized(t *testing.T) {
	t.Parallel()

	bare := CanonicalizeURL("https://example.com")
	slash := CanonicalizeURL("https://example.com/")
	if bare != slash {
		t.Fatalf("root path variants differ: %q vs %q", bare, slash)
	}
}

func TestCanonicalizeURL_MalformedUnchanged(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "not a url", "example.com/path", "://bad"}
	for _, raw := range inputs {
		if got := CanonicalizeURL(raw); got != raw {
			t.Fatalf("expected %q unchanged, got %q", raw, got)
		}
	}
}

func TestCanonicalizeURL_KeepsNonDefaultPort(t *testing.T) {
	t.Parallel()

	got := CanonicalizeURL("https://example.com:8443/path")
	if got != "https://example.com:8443/path" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	if got := NormalizeDomain("https://WWW.Example.com:8080/path"); got != "example.com" {
		t.Fatalf("unexpected domain: %q", got)
	}
	if got := NormalizeDomain("not a url"); got != "" {
		t.Fatalf("expected empty domain for invalid input, got %q", got)
	}
}
