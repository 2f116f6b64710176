package profile

import (
	"daxforge/domain/core"
	"daxforge/domain/profile"
	"daxforge/domain/tabular"
)

// Aggregator combines per-column statistics into a file-level profile
type Aggregator struct {
	profiler *Profiler
}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{profiler: NewProfiler()}
}

// BuildProfile derives the file profile from a parsed table. Row count is
// the number of data rows (post-header), column count is the header length,
// and columns follow the file's original column order. AI insights are
// absent here; they are attached later if and when the collaborator responds.
func (a *Aggregator) BuildProfile(fileName string, table *tabular.Table) *profile.FileProfile {
	columns := make([]profile.ColumnStats, len(table.Header))
	for i, name := range table.Header {
		columns[i] = a.profiler.ProfileColumn(name, table.Column(i))
	}

	return &profile.FileProfile{
		FileName:    fileName,
		RowCount:    table.RowCount(),
		ColumnCount: table.ColumnCount(),
		Columns:     columns,
		Version:     1,
		ProfiledAt:  core.Now(),
	}
}
