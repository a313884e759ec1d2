package db

import (
	"encoding/json"
	"time"
)

// GraphRun maps tabgraph.graph_runs. Each row is one full graph build:
// the input stats, the tuning knobs used, and the assembled graph JSON.
type GraphRun struct {
	RunID        int64           `gorm:"column:run_id;primaryKey;autoIncrement"`
	RunUUID      string          `gorm:"column:run_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Source       string          `gorm:"column:source;type:text;not null"`
	GeneratedAt  time.Time       `gorm:"column:generated_at;type:timestamptz;not null"`
	TabCount     int             `gorm:"column:tab_count;type:integer;not null;default:0"`
	GroupCount   int             `gorm:"column:group_count;type:integer;not null;default:0"`
	EdgeCount    int             `gorm:"column:edge_count;type:integer;not null;default:0"`
	DupeCount    int             `gorm:"column:dupe_count;type:integer;not null;default:0"`
	ErrorCount   int             `gorm:"column:error_count;type:integer;not null;default:0"`
	Options      json.RawMessage `gorm:"column:options;type:jsonb"`
	Graph        json.RawMessage `gorm:"column:graph;type:jsonb;not null"`
	BuildMS      *int            `gorm:"column:build_ms;type:integer"`
	CreatedAt    time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (GraphRun) TableName() string { return "tabgraph.graph_runs" }

func autoMigrateModels() []any {
	return []any{
		&GraphRun{},
	}
}
