package profile

import (
	"daxforge/domain/core"
)

// DataType represents the inferred type of a column
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeMixed   DataType = "mixed"
	// TypeUnknown only when all values are missing
	TypeUnknown DataType = "unknown"
)

// NumericSummary contains descriptive statistics for number columns.
// Decoration only: the count invariants bind ColumnStats, not this.
type NumericSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// ColumnStats is the statistical profile of one column of one file.
//
// Invariant: MissingValues + (count of non-missing values) = RowCount of the
// owning file. NonNumericCount is meaningful only while DataType is mixed and
// must be zeroed whenever the type changes away from mixed.
type ColumnStats struct {
	Name          string   `json:"name"`
	DataType      DataType `json:"data_type"`
	MissingValues int      `json:"missing_values"`
	UniqueValues  int      `json:"unique_values"`
	// NonNumericCount is the non-numeric share of non-missing values,
	// present only when DataType is mixed.
	NonNumericCount int `json:"non_numeric_count,omitempty"`

	// Supplemental decorations for suggestion prompts and rendering
	SampleValues   []string        `json:"sample_values,omitempty"`
	Entropy        float64         `json:"entropy"`
	NumericSummary *NumericSummary `json:"numeric_summary,omitempty"`
}

// Clone returns a deep copy of the column statistics
func (c ColumnStats) Clone() ColumnStats {
	out := c
	if c.SampleValues != nil {
		out.SampleValues = append([]string(nil), c.SampleValues...)
	}
	if c.NumericSummary != nil {
		ns := *c.NumericSummary
		out.NumericSummary = &ns
	}
	return out
}

// AIInsights is the optional externally supplied summary for one file.
// Absent until the collaborator responds; never required for correctness.
type AIInsights struct {
	SuggestedKPIs      []string `json:"suggested_kpis"`
	DataQualitySummary string   `json:"data_quality_summary"`
}

// FileProfile is the statistical summary of one ingested file.
//
// Created once per file immediately after parsing and profiling, mutated in
// place only by the cleaning simulator via whole-value replacement.
type FileProfile struct {
	FileName    string        `json:"file_name"`
	RowCount    int           `json:"row_count"`
	ColumnCount int           `json:"column_count"`
	Columns     []ColumnStats `json:"columns"`
	AIInsights  *AIInsights   `json:"ai_insights,omitempty"`

	// Version increments on every whole-profile replacement; collaborator
	// responses targeting an older version are dropped.
	Version    int            `json:"version"`
	ProfiledAt core.Timestamp `json:"profiled_at"`
}

// Clone returns a deep copy of the profile
func (p *FileProfile) Clone() *FileProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.Columns = make([]ColumnStats, len(p.Columns))
	for i, col := range p.Columns {
		out.Columns[i] = col.Clone()
	}
	if p.AIInsights != nil {
		ai := *p.AIInsights
		ai.SuggestedKPIs = append([]string(nil), p.AIInsights.SuggestedKPIs...)
		out.AIInsights = &ai
	}
	return &out
}

// Column returns the stats for the named column, or nil if absent
func (p *FileProfile) Column(name string) *ColumnStats {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the profile contains the named column
func (p *FileProfile) HasColumn(name string) bool {
	return p.Column(name) != nil
}
