// Package heuristic provides a rule-based suggestion collaborator used when
// no hosted LLM is configured. It is deterministic, offline, and keeps the
// wizard usable end to end.
package heuristic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"daxforge/domain/profile"
	"daxforge/ports"
)

// Suggester generates suggestions using algorithmic rules over profiles
type Suggester struct{}

// NewSuggester creates a new heuristic suggester
func NewSuggester() *Suggester {
	return &Suggester{}
}

// GetInsights derives KPIs and a quality summary from profile statistics
func (s *Suggester) GetInsights(ctx context.Context, p *profile.FileProfile, fileName string) (*profile.AIInsights, error) {
	kpis := make([]string, 0, 5)
	for _, col := range p.Columns {
		if col.DataType == profile.TypeNumber {
			kpis = append(kpis, fmt.Sprintf("Total %s", col.Name), fmt.Sprintf("Average %s", col.Name))
		}
		if len(kpis) >= 5 {
			break
		}
	}
	if len(kpis) == 0 {
		kpis = append(kpis, fmt.Sprintf("Row count of %s", fileName))
	}
	if len(kpis) > 5 {
		kpis = kpis[:5]
	}

	missingColumns := 0
	mixedColumns := 0
	for _, col := range p.Columns {
		if col.MissingValues > 0 {
			missingColumns++
		}
		if col.DataType == profile.TypeMixed {
			mixedColumns++
		}
	}

	summary := fmt.Sprintf("%d rows across %d columns.", p.RowCount, p.ColumnCount)
	if missingColumns > 0 {
		summary += fmt.Sprintf(" **%d column(s)** contain missing values.", missingColumns)
	}
	if mixedColumns > 0 {
		summary += fmt.Sprintf(" **%d column(s)** mix numeric and text values.", mixedColumns)
	}
	if missingColumns == 0 && mixedColumns == 0 {
		summary += " No data-quality issues detected."
	}

	return &profile.AIInsights{
		SuggestedKPIs:      kpis,
		DataQualitySummary: summary,
	}, nil
}

// GetCleaningSuggestions returns rule-based remedies for one issue
func (s *Suggester) GetCleaningSuggestions(ctx context.Context, issue profile.Issue) ([]ports.CleaningSuggestion, error) {
	switch issue.Kind {
	case profile.IssueMissingValues:
		suggestions := []ports.CleaningSuggestion{
			{
				ActionKind:  "fill_mean",
				Description: fmt.Sprintf("Fill the %d missing cells with the column mean (numeric columns)", issue.MissingCount),
			},
			{
				ActionKind:  "fill_mode",
				Description: "Fill missing cells with the most frequent value",
			},
			{
				ActionKind:  "remove_rows",
				Description: fmt.Sprintf("Remove the %d rows with a missing value (of %d total)", issue.MissingCount, issue.RowCount),
			},
		}
		// Removing most of the file is rarely the right call
		if issue.RowCount > 0 && float64(issue.MissingCount)/float64(issue.RowCount) > 0.5 {
			suggestions = suggestions[:2]
		}
		return suggestions, nil

	case profile.IssueMixedType:
		return []ports.CleaningSuggestion{
			{
				ActionKind:  "change_type",
				Description: fmt.Sprintf("Convert to number; the %d non-numeric values become missing", issue.NonNumericCount),
				Parameters:  map[string]string{"target": "number"},
			},
			{
				ActionKind:  "change_type",
				Description: "Convert the whole column to text",
				Parameters:  map[string]string{"target": "string"},
			},
			{
				ActionKind:  "trim_whitespace",
				Description: "Trim whitespace in case stray spaces break numeric parsing",
			},
		}, nil

	default:
		return []ports.CleaningSuggestion{}, nil
	}
}

// GetRelationshipSuggestions scores every cross-file column pair by name and
// type compatibility, mirroring a schema-matching join heuristic
func (s *Suggester) GetRelationshipSuggestions(ctx context.Context, profiles []*profile.FileProfile) ([]ports.RelationshipSuggestion, error) {
	if len(profiles) < 2 {
		return []ports.RelationshipSuggestion{}, nil
	}

	var suggestions []ports.RelationshipSuggestion
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			suggestions = append(suggestions, s.analyzePair(profiles[i], profiles[j])...)
		}
	}

	sort.Slice(suggestions, func(a, b int) bool {
		if suggestions[a].Confidence != suggestions[b].Confidence {
			return suggestions[a].Confidence > suggestions[b].Confidence
		}
		return suggestions[a].FromColumn < suggestions[b].FromColumn
	})
	return suggestions, nil
}

// analyzePair scores column pairings between two files
func (s *Suggester) analyzePair(p1, p2 *profile.FileProfile) []ports.RelationshipSuggestion {
	var out []ports.RelationshipSuggestion
	for _, c1 := range p1.Columns {
		for _, c2 := range p2.Columns {
			confidence, reason := scoreColumnPair(c1, c2)
			if confidence < 0.5 {
				continue
			}
			out = append(out, ports.RelationshipSuggestion{
				FromTable:        p1.FileName,
				FromColumn:       c1.Name,
				ToTable:          p2.FileName,
				ToColumn:         c2.Name,
				RelationshipKind: inferCardinality(c1, c2, p1.RowCount, p2.RowCount),
				Confidence:       confidence,
				Reason:           reason,
			})
		}
	}
	return out
}

// scoreColumnPair rates how plausible a join between two columns is
func scoreColumnPair(c1, c2 profile.ColumnStats) (float64, string) {
	n1 := normalizeColumnName(c1.Name)
	n2 := normalizeColumnName(c2.Name)

	if n1 != n2 {
		return 0, ""
	}
	if c1.DataType != c2.DataType && c1.DataType != profile.TypeUnknown && c2.DataType != profile.TypeUnknown {
		return 0.5, fmt.Sprintf("columns share the name %q but differ in type", c1.Name)
	}

	confidence := 0.75
	reason := fmt.Sprintf("columns share the name %q and type %s", c1.Name, c1.DataType)
	if strings.HasSuffix(n1, "id") || strings.HasSuffix(n1, "key") || strings.HasSuffix(n1, "code") {
		confidence = 0.9
		reason += " and look like a key"
	}
	return confidence, reason
}

// inferCardinality guesses the relationship kind from uniqueness
func inferCardinality(c1, c2 profile.ColumnStats, rows1, rows2 int) string {
	unique1 := rows1 > 0 && c1.UniqueValues == rows1-c1.MissingValues && c1.UniqueValues > 0
	unique2 := rows2 > 0 && c2.UniqueValues == rows2-c2.MissingValues && c2.UniqueValues > 0

	switch {
	case unique1 && unique2:
		return "one-to-one"
	case unique1 || unique2:
		return "one-to-many"
	default:
		return "many-to-many"
	}
}

// normalizeColumnName lowercases and strips separators for matching
func normalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

// GetDaxFormula produces a template formula; the offline mode cannot reason
// about the prompt beyond simple aggregation keywords
func (s *Suggester) GetDaxFormula(ctx context.Context, naturalLanguagePrompt string) (*ports.DaxResult, error) {
	lower := strings.ToLower(naturalLanguagePrompt)

	aggregate := "SUM"
	switch {
	case strings.Contains(lower, "average") || strings.Contains(lower, "mean"):
		aggregate = "AVERAGE"
	case strings.Contains(lower, "count"):
		aggregate = "COUNTROWS"
	case strings.Contains(lower, "max"):
		aggregate = "MAX"
	case strings.Contains(lower, "min"):
		aggregate = "MIN"
	}

	formula := fmt.Sprintf("Measure = %s ( 'Table'[Column] )", aggregate)
	if aggregate == "COUNTROWS" {
		formula = "Measure = COUNTROWS ( 'Table' )"
	}

	return &ports.DaxResult{
		DaxFormula: formula,
		Explanation: fmt.Sprintf("Offline template for %q: replace 'Table'[Column] with your table and column. "+
			"Configure OPENAI_API_KEY for prompt-specific formulas.", naturalLanguagePrompt),
		OptimizationTips: []string{
			"Prefer measures over calculated columns for aggregations",
			"Avoid iterating functions (SUMX) when a plain aggregate works",
		},
		CommonPitfalls: []string{
			"Row context is not filter context: wrap with CALCULATE when filtering",
			"Blank rows propagate through arithmetic; guard with DIVIDE",
		},
	}, nil
}
