package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/tabgraph/internal/graph"
)

func testGraph() *graph.Graph {
	dup := 0
	return &graph.Graph{
		SchemaVersion: graph.SchemaVersion,
		GeneratedAt:   time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Source:        "unit",
		Stats: graph.Stats{
			TabCount:   3,
			GroupCount: 2,
			EdgeCount:  1,
			Duplicates: 1,
		},
		Tabs: []*graph.TabRecord{
			{ID: 0, URL: "https://example.com/a", Domain: "example.com", CanonicalURL: "https://example.com/a", GroupID: 0},
			{ID: 1, URL: "https://example.com/a?utm_source=x", Domain: "example.com", CanonicalURL: "https://example.com/a", DuplicateOf: &dup, GroupID: 0},
			{ID: 2, URL: "https://other.org/b", Domain: "other.org", CanonicalURL: "https://other.org/b", GroupID: 1},
		},
		Groups: []graph.Group{
			{ID: 0, Label: "example.com", TabIDs: []int{0, 1}, Size: 2},
			{ID: 1, Label: "other.org", TabIDs: []int{2}, Size: 1},
		},
		Edges: []graph.Edge{
			{SourceID: 0, TargetID: 2, Weight: 0.42, Reason: graph.ReasonSimilarity},
		},
	}
}

func newTestServer(t *testing.T, source GraphSource) http.Handler {
	t.Helper()
	srv := NewServer(source, zerolog.Nop(), Options{})
	return srv.buildEcho()
}

func writeGraphFile(t *testing.T, g *graph.Graph) string {
	t.Helper()
	encoded, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal graph: %v", err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
	return path
}

func doRequest(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, NewFileSource("does-not-matter"))
	rec, body := doRequest(t, handler, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body["status"] != "success" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestHandleGraph_FileSource(t *testing.T) {
	t.Parallel()

	path := writeGraphFile(t, testGraph())
	handler := newTestServer(t, NewFileSource(path))

	rec, body := doRequest(t, handler, "/api/v1/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data envelope: %v", body)
	}
	if data["source"] != "unit" {
		t.Fatalf("unexpected source: %v", data["source"])
	}
	tabs, ok := data["tabs"].([]any)
	if !ok || len(tabs) != 3 {
		t.Fatalf("unexpected tabs: %v", data["tabs"])
	}
}

func TestHandleGraph_MissingFileIs404(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, NewFileSource(filepath.Join(t.TempDir(), "missing.json")))
	rec, body := doRequest(t, handler, "/api/v1/graph")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, NewFileSource(writeGraphFile(t, testGraph())))
	rec, body := doRequest(t, handler, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	stats := data["stats"].(map[string]any)
	if stats["tab_count"].(float64) != 3 {
		t.Fatalf("unexpected tab count: %v", stats["tab_count"])
	}
}

func TestHandleGroupDetail(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, NewFileSource(writeGraphFile(t, testGraph())))

	rec, body := doRequest(t, handler, "/api/v1/groups/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	tabs := data["tabs"].([]any)
	if len(tabs) != 2 {
		t.Fatalf("group 0 must list both members, got %d", len(tabs))
	}

	rec, _ = doRequest(t, handler, "/api/v1/groups/99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown group must 404, got %d", rec.Code)
	}

	rec, _ = doRequest(t, handler, "/api/v1/groups/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric group id must 400, got %d", rec.Code)
	}
}

func TestHandleTabDetail(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, NewFileSource(writeGraphFile(t, testGraph())))

	rec, body := doRequest(t, handler, "/api/v1/tabs/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	edges := data["edges"].([]any)
	if len(edges) != 1 {
		t.Fatalf("tab 0 must carry its edge, got %v", data["edges"])
	}

	rec, _ = doRequest(t, handler, "/api/v1/tabs/42")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown tab must 404, got %d", rec.Code)
	}
}

func TestFileSource_PicksUpRewrites(t *testing.T) {
	t.Parallel()

	path := writeGraphFile(t, testGraph())
	source := NewFileSource(path)

	first, err := source.Graph(nil)
	if err != nil {
		t.Fatalf("load graph: %v", err)
	}
	if first.Source != "unit" {
		t.Fatalf("unexpected source: %q", first.Source)
	}

	updated := testGraph()
	updated.Source = "second"
	encoded, _ := json.Marshal(updated)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("rewrite graph: %v", err)
	}

	second, err := source.Graph(nil)
	if err != nil {
		t.Fatalf("reload graph: %v", err)
	}
	if second.Source != "second" {
		t.Fatalf("file source must re-read the file, got %q", second.Source)
	}
}
