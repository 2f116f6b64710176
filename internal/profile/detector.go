package profile

import (
	"daxforge/domain/profile"
)

// Detector scans a profile for columns needing attention
type Detector struct{}

// NewDetector creates a new issue detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect emits one missing_values descriptor per column with missing cells
// and one independent mixed_type descriptor per mixed column with non-numeric
// values. A column can contribute both. The output is pure derived data:
// the same profile always yields the identical descriptor set.
func (d *Detector) Detect(p *profile.FileProfile) []profile.Issue {
	issues := make([]profile.Issue, 0)
	for _, col := range p.Columns {
		if col.MissingValues > 0 {
			issues = append(issues, profile.Issue{
				FileName:     p.FileName,
				ColumnName:   col.Name,
				Kind:         profile.IssueMissingValues,
				MissingCount: col.MissingValues,
				RowCount:     p.RowCount,
			})
		}
		if col.DataType == profile.TypeMixed && col.NonNumericCount > 0 {
			issues = append(issues, profile.Issue{
				FileName:        p.FileName,
				ColumnName:      col.Name,
				Kind:            profile.IssueMixedType,
				NonNumericCount: col.NonNumericCount,
				RowCount:        p.RowCount,
			})
		}
	}
	return issues
}
