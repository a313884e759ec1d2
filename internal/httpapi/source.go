package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"horse.fit/tabgraph/internal/db"
	"horse.fit/tabgraph/internal/graph"
)

// ErrNoGraph means the source has no graph to serve yet.
var ErrNoGraph = errors.New("no graph available")

// GraphSource supplies the graph the API serves. A file source re-reads
// the file on every request so a rebuilt export is picked up without a
// restart; a store source always serves the latest persisted run.
type GraphSource interface {
	Graph(ctx context.Context) (*graph.Graph, error)
}

type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Graph(_ context.Context) (*graph.Graph, error) {
	if f == nil || f.Path == "" {
		return nil, ErrNoGraph
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoGraph
		}
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	var g graph.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode graph file %s: %w", f.Path, err)
	}
	return &g, nil
}

type StoreSource struct {
	pool   *db.Pool
	source string
}

func NewStoreSource(pool *db.Pool, source string) *StoreSource {
	return &StoreSource{pool: pool, source: source}
}

func (s *StoreSource) Graph(ctx context.Context) (*graph.Graph, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNoGraph
	}

	run, err := s.pool.LatestGraphRun(ctx, s.source)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNoGraph
		}
		return nil, fmt.Errorf("load latest graph run: %w", err)
	}

	var g graph.Graph
	if err := json.Unmarshal(run.Graph, &g); err != nil {
		return nil, fmt.Errorf("decode stored graph %s: %w", run.RunUUID, err)
	}
	return &g, nil
}
