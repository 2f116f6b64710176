package cleaning

import (
	"encoding/json"
	"testing"

	"daxforge/domain/cleaning"
	"daxforge/domain/core"
	"daxforge/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleProfile builds a 100-row profile: column A missing 10, column B
// missing 20, column C mixed with 5 non-numeric and 2 missing
func sampleProfile() *profile.FileProfile {
	return &profile.FileProfile{
		FileName:    "sales.csv",
		RowCount:    100,
		ColumnCount: 3,
		Columns: []profile.ColumnStats{
			{Name: "A", DataType: profile.TypeNumber, MissingValues: 10, UniqueValues: 40},
			{Name: "B", DataType: profile.TypeString, MissingValues: 20, UniqueValues: 12},
			{Name: "C", DataType: profile.TypeMixed, MissingValues: 2, UniqueValues: 50, NonNumericCount: 5},
		},
		Version:    1,
		ProfiledAt: core.Now(),
	}
}

func TestApplyRemoveRowsPropagation(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{"A": cleaning.RemoveRows{}})

	assert.Equal(t, 90, result.RowCount)
	assert.Equal(t, 0, result.Column("A").MissingValues)
	// B loses round(20 * 10/100) = 2 of its missing cells with the removed rows
	assert.Equal(t, 18, result.Column("B").MissingValues)
	// C loses round(2 * 10/100) = 0
	assert.Equal(t, 2, result.Column("C").MissingValues)
	assert.Equal(t, 2, result.Version)
}

func TestApplyMultipleRemoveRowsUsesMaxNotSum(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{
		"A": cleaning.RemoveRows{},
		"B": cleaning.RemoveRows{},
	})

	// Overlapping removals: only the largest count (20) leaves the file
	assert.Equal(t, 80, result.RowCount)
	assert.Equal(t, 0, result.Column("A").MissingValues)
	assert.Equal(t, 0, result.Column("B").MissingValues)
	// C: 2 - round(2 * 20/100) = 2 - 0 = 2
	assert.Equal(t, 2, result.Column("C").MissingValues)
}

func TestApplyFillIncrementsUnique(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	for _, action := range []cleaning.Action{
		cleaning.FillMean{}, cleaning.FillMedian{}, cleaning.FillMode{}, cleaning.FillCustom{Value: "0"},
	} {
		result := s.Apply(p, cleaning.SelectionSet{"A": action})
		col := result.Column("A")
		assert.Equal(t, 0, col.MissingValues, "action %s", action.Kind())
		// The fill value counts as one new distinct value, unconditionally
		assert.Equal(t, 41, col.UniqueValues, "action %s", action.Kind())
		assert.Equal(t, 100, result.RowCount)
	}
}

func TestApplyChangeTypeToNumber(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{
		"C": cleaning.ChangeType{Target: profile.TypeNumber},
	})

	col := result.Column("C")
	assert.Equal(t, profile.TypeNumber, col.DataType)
	// The 5 non-numeric values become missing under the conversion
	assert.Equal(t, 7, col.MissingValues)
	assert.Equal(t, 0, col.NonNumericCount)
	assert.Nil(t, col.NumericSummary)
}

func TestApplyChangeTypeToString(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{
		"C": cleaning.ChangeType{Target: profile.TypeString},
	})

	col := result.Column("C")
	assert.Equal(t, profile.TypeString, col.DataType)
	// Converting to string loses nothing
	assert.Equal(t, 2, col.MissingValues)
	assert.Equal(t, 0, col.NonNumericCount)
}

func TestApplyTrimWhitespaceIsStatisticsNeutral(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{"B": cleaning.TrimWhitespace{}})

	assert.Equal(t, p.RowCount, result.RowCount)
	assert.Equal(t, p.Column("B").MissingValues, result.Column("B").MissingValues)
	assert.Equal(t, p.Column("B").UniqueValues, result.Column("B").UniqueValues)
	// The apply still produces a new version
	assert.Equal(t, p.Version+1, result.Version)
}

func TestApplyDropsStaleSelections(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{
		"gone": cleaning.RemoveRows{},
		"A":    cleaning.FillMean{},
	})

	// The absent column contributes nothing; the valid one still applies
	assert.Equal(t, 100, result.RowCount)
	assert.Equal(t, 0, result.Column("A").MissingValues)
}

func TestApplyIsDeterministic(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	selections := cleaning.SelectionSet{
		"A": cleaning.RemoveRows{},
		"B": cleaning.FillMode{},
		"C": cleaning.ChangeType{Target: profile.TypeNumber},
	}

	first, err := json.Marshal(s.Apply(p, selections))
	require.NoError(t, err)
	second, err := json.Marshal(s.Apply(p, selections))
	require.NoError(t, err)

	// Byte-identical replay: same profile, same selections, same result
	assert.Equal(t, string(first), string(second))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()
	before, err := json.Marshal(p)
	require.NoError(t, err)

	s.Apply(p, cleaning.SelectionSet{
		"A": cleaning.RemoveRows{},
		"C": cleaning.ChangeType{Target: profile.TypeNumber},
	})

	after, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestApplyEmptySelectionsStillBumpsVersion(t *testing.T) {
	s := NewSimulator()
	p := sampleProfile()

	result := s.Apply(p, cleaning.SelectionSet{})

	assert.Equal(t, p.Version+1, result.Version)
	assert.Equal(t, p.RowCount, result.RowCount)
	assert.Equal(t, p.ProfiledAt, result.ProfiledAt)
}

func TestApplyRemoveFloorsRowCountAtZero(t *testing.T) {
	s := NewSimulator()
	p := &profile.FileProfile{
		FileName:    "tiny.csv",
		RowCount:    3,
		ColumnCount: 1,
		Columns: []profile.ColumnStats{
			{Name: "A", DataType: profile.TypeUnknown, MissingValues: 3},
		},
		Version: 1,
	}

	result := s.Apply(p, cleaning.SelectionSet{"A": cleaning.RemoveRows{}})
	assert.Equal(t, 0, result.RowCount)
	assert.Equal(t, 0, result.Column("A").MissingValues)
}
