// Package cleaning applies staged cleaning selections to a file's
// statistical profile. This is a simulation over statistics, not a
// transformation of underlying rows: the source data is never re-read.
package cleaning

import (
	"log"
	"math"

	"daxforge/domain/cleaning"
	"daxforge/domain/profile"
)

// Simulator applies cleaning selections to file profiles
type Simulator struct{}

// NewSimulator creates a new cleaning simulator
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Apply computes a full replacement profile for the given selection set.
// The input profile is never mutated; callers commit the returned profile in
// one step so no partially-updated state is ever observable. Applying the
// same selections to the same profile is deterministic.
//
// Selections referencing columns absent from the profile are silently
// dropped, tolerating stale selections after a profile changes shape.
func (s *Simulator) Apply(p *profile.FileProfile, selections cleaning.SelectionSet) *profile.FileProfile {
	result := p.Clone()
	originalRowCount := p.RowCount

	// Per-column effects first. Row-removal candidates are collected for the
	// cross-column propagation pass below.
	removedBy := make(map[string]bool)
	maxRemoved := 0

	for columnName, action := range selections {
		col := result.Column(columnName)
		if col == nil {
			log.Printf("[CleaningSimulator] Dropping stale selection for absent column %q in %s", columnName, p.FileName)
			continue
		}

		switch a := action.(type) {
		case cleaning.RemoveRows:
			removedBy[columnName] = true
			if col.MissingValues > maxRemoved {
				maxRemoved = col.MissingValues
			}
			col.MissingValues = 0

		case cleaning.FillMean, cleaning.FillMedian, cleaning.FillMode, cleaning.FillCustom:
			// The fill value counts as one new distinct value injected
			// across all previously-missing cells.
			col.MissingValues = 0
			col.UniqueValues++

		case cleaning.ChangeType:
			if a.Target == profile.TypeNumber && col.NonNumericCount > 0 {
				// Non-numeric values become null under the hypothetical
				// conversion.
				col.MissingValues += col.NonNumericCount
			}
			col.DataType = a.Target
			col.NonNumericCount = 0
			col.NumericSummary = nil

		case cleaning.TrimWhitespace:
			// Recognized but statistics-neutral.

		default:
			log.Printf("[CleaningSimulator] Ignoring unknown action %q for column %q", action.Kind(), columnName)
		}
	}

	// Cross-column propagation: multiple remove-rows selections are assumed
	// to target the same row set, so only the largest single removal count is
	// subtracted from the file.
	if maxRemoved > 0 && originalRowCount > 0 {
		result.RowCount = originalRowCount - maxRemoved
		if result.RowCount < 0 {
			result.RowCount = 0
		}

		// Removed rows take a proportional share of every other column's
		// missing cells with them. This is an estimate, not an exact
		// recomputation against row data.
		for i := range result.Columns {
			col := &result.Columns[i]
			if removedBy[col.Name] {
				continue
			}
			reduction := int(math.Round(float64(col.MissingValues) * float64(maxRemoved) / float64(originalRowCount)))
			col.MissingValues -= reduction
			if col.MissingValues < 0 {
				col.MissingValues = 0
			}
		}
	}

	result.Version = p.Version + 1
	return result
}
