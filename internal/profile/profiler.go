// Package profile computes per-column statistics, assembles file-level
// profiles, and detects the column conditions that warrant cleaning
// suggestions.
package profile

import (
	"regexp"
	"strconv"
	"strings"

	"daxforge/domain/profile"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// numericPattern matches an optionally-negative integer-or-decimal value.
// No exponent, no thousands separators, no leading plus.
var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// maxSampleValues caps the distinct values carried as a column decoration
const maxSampleValues = 5

// Profiler derives column statistics from stringified cell values
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// IsMissing reports whether a cell value counts as missing
func IsMissing(value string) bool {
	return strings.TrimSpace(value) == ""
}

// IsNumeric reports whether a trimmed non-missing value is numeric
func IsNumeric(value string) bool {
	return numericPattern.MatchString(value)
}

// ProfileColumn computes the statistics for one column. The values slice
// must be aligned across all rows of the owning file, so that
// missing + non-missing always equals the file's row count.
func (p *Profiler) ProfileColumn(name string, values []string) profile.ColumnStats {
	missing := 0
	counts := make(map[string]int)
	var order []string // distinct values in encounter order
	numericCount := 0
	nonNumericCount := 0
	var numericValues []float64

	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			missing++
			continue
		}
		if counts[trimmed] == 0 {
			order = append(order, trimmed)
		}
		counts[trimmed]++

		if IsNumeric(trimmed) {
			numericCount++
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				numericValues = append(numericValues, f)
			}
		} else {
			nonNumericCount++
		}
	}

	col := profile.ColumnStats{
		Name:          name,
		MissingValues: missing,
		UniqueValues:  len(counts),
	}

	nonMissing := numericCount + nonNumericCount
	switch {
	case nonMissing == 0:
		col.DataType = profile.TypeUnknown
	case nonNumericCount == 0:
		col.DataType = profile.TypeNumber
	case numericCount == 0:
		col.DataType = profile.TypeString
	default:
		col.DataType = profile.TypeMixed
		col.NonNumericCount = nonNumericCount
	}

	if len(order) > maxSampleValues {
		col.SampleValues = append([]string(nil), order[:maxSampleValues]...)
	} else if len(order) > 0 {
		col.SampleValues = append([]string(nil), order...)
	}

	col.Entropy = distributionEntropy(counts, nonMissing)

	if col.DataType == profile.TypeNumber && len(numericValues) > 0 {
		col.NumericSummary = numericSummary(numericValues)
	}

	return col
}

// distributionEntropy computes the Shannon entropy of the value distribution
func distributionEntropy(counts map[string]int, nonMissing int) float64 {
	if nonMissing == 0 || len(counts) < 2 {
		return 0
	}
	dist := make([]float64, 0, len(counts))
	for _, c := range counts {
		dist = append(dist, float64(c)/float64(nonMissing))
	}
	return stat.Entropy(dist)
}

// numericSummary computes descriptive statistics for a number column
func numericSummary(values []float64) *profile.NumericSummary {
	data := stats.Float64Data(values)
	min, err := data.Min()
	if err != nil {
		return nil
	}
	max, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	stdDev, _ := data.StandardDeviation()

	return &profile.NumericSummary{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
	}
}
