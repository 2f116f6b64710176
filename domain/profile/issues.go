package profile

// IssueKind identifies a column condition that warrants a cleaning suggestion
type IssueKind string

const (
	IssueMissingValues IssueKind = "missing_values"
	IssueMixedType     IssueKind = "mixed_type"
)

// Issue is an ephemeral descriptor of one column condition. It is derived,
// never stored: recomputing from the same profile always yields the same set.
type Issue struct {
	FileName   string    `json:"file_name"`
	ColumnName string    `json:"column_name"`
	Kind       IssueKind `json:"kind"`
	// MissingCount is set for missing_values issues
	MissingCount int `json:"missing_count,omitempty"`
	// NonNumericCount is set for mixed_type issues
	NonNumericCount int `json:"non_numeric_count,omitempty"`
	RowCount        int `json:"row_count"`
}
