package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RunSummary is the list read model for stored graph runs. The graph
// payload itself is omitted; fetch it with GetGraphRun.
type RunSummary struct {
	RunUUID     string `json:"run_uuid"`
	Source      string `json:"source"`
	GeneratedAt string `json:"generated_at"`
	TabCount    int    `json:"tab_count"`
	GroupCount  int    `json:"group_count"`
	EdgeCount   int    `json:"edge_count"`
	DupeCount   int    `json:"dupe_count"`
	ErrorCount  int    `json:"error_count"`
	CreatedAt   string `json:"created_at"`
}

// InsertGraphRun persists a completed build and returns the stored row
// with its generated identifiers filled in.
func (p *Pool) InsertGraphRun(ctx context.Context, run *GraphRun) (*GraphRun, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if run == nil {
		return nil, fmt.Errorf("graph run is nil")
	}
	if err := p.gdb.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("insert graph run: %w", err)
	}
	return run, nil
}

// ListGraphRuns returns the most recent runs, newest first. An empty
// source matches all sources.
func (p *Pool) ListGraphRuns(ctx context.Context, source string, limit int) ([]RunSummary, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := p.gdb.WithContext(ctx).Model(&GraphRun{}).
		Order("created_at DESC, run_id DESC").
		Limit(limit)
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var runs []GraphRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list graph runs: %w", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, RunSummary{
			RunUUID:     run.RunUUID,
			Source:      run.Source,
			GeneratedAt: run.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			TabCount:    run.TabCount,
			GroupCount:  run.GroupCount,
			EdgeCount:   run.EdgeCount,
			DupeCount:   run.DupeCount,
			ErrorCount:  run.ErrorCount,
			CreatedAt:   run.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return summaries, nil
}

// LatestGraphRun returns the newest stored run, or ErrNoRows when the
// store is empty.
func (p *Pool) LatestGraphRun(ctx context.Context, source string) (*GraphRun, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	query := p.gdb.WithContext(ctx).
		Order("created_at DESC, run_id DESC")
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var run GraphRun
	if err := query.First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("latest graph run: %w", err)
	}
	return &run, nil
}

// GetGraphRun fetches a single run by its public UUID.
func (p *Pool) GetGraphRun(ctx context.Context, runUUID string) (*GraphRun, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if runUUID == "" {
		return nil, fmt.Errorf("run uuid is empty")
	}

	var run GraphRun
	err := p.gdb.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("get graph run: %w", err)
	}
	return &run, nil
}
