package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"daxforge/domain/core"
	"daxforge/domain/profile"
	"daxforge/ports"
)

// OpenAISuggester implements the suggestion collaborator over the hosted
// LLM. Request payloads are plain structured data; responses must conform
// to a fixed schema or the call fails with a descriptive error. No retry
// policy lives here - a failure surfaces once per call and the UI decides
// on re-invocation.
type OpenAISuggester struct {
	client *Client
	usage  ports.UsageRecorder
}

// NewOpenAISuggester creates the hosted collaborator. The usage recorder
// may be nil; accounting never blocks the wizard.
func NewOpenAISuggester(client *Client, usage ports.UsageRecorder) *OpenAISuggester {
	return &OpenAISuggester{client: client, usage: usage}
}

// columnSummary is the wire shape of one column in suggestion prompts
type columnSummary struct {
	Name            string                  `json:"name"`
	DataType        profile.DataType        `json:"data_type"`
	MissingValues   int                     `json:"missing_values"`
	UniqueValues    int                     `json:"unique_values"`
	NonNumericCount int                     `json:"non_numeric_count,omitempty"`
	SampleValues    []string                `json:"sample_values,omitempty"`
	NumericSummary  *profile.NumericSummary `json:"numeric_summary,omitempty"`
}

// profileSummary is the wire shape of one file in suggestion prompts
type profileSummary struct {
	FileName    string          `json:"file_name"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []columnSummary `json:"columns"`
}

func summarizeProfile(p *profile.FileProfile) profileSummary {
	columns := make([]columnSummary, len(p.Columns))
	for i, col := range p.Columns {
		columns[i] = columnSummary{
			Name:            col.Name,
			DataType:        col.DataType,
			MissingValues:   col.MissingValues,
			UniqueValues:    col.UniqueValues,
			NonNumericCount: col.NonNumericCount,
			SampleValues:    col.SampleValues,
			NumericSummary:  col.NumericSummary,
		}
	}
	return profileSummary{
		FileName:    p.FileName,
		RowCount:    p.RowCount,
		ColumnCount: p.ColumnCount,
		Columns:     columns,
	}
}

// GetInsights returns suggested KPIs and a data-quality summary for one file
func (s *OpenAISuggester) GetInsights(ctx context.Context, p *profile.FileProfile, fileName string) (*profile.AIInsights, error) {
	summary, err := json.MarshalIndent(summarizeProfile(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	prompt := fmt.Sprintf(`Analyze this dataset profile for the file %q and respond with JSON:
{"suggested_kpis": ["..."], "data_quality_summary": "..."}

suggested_kpis: 3-5 business KPIs this data could power.
data_quality_summary: 2-3 sentences on data quality (markdown allowed).

Profile:
%s`, fileName, string(summary))

	type insightsResponse struct {
		SuggestedKPIs      []string `json:"suggested_kpis"`
		DataQualitySummary string   `json:"data_quality_summary"`
	}

	start := time.Now()
	result, usage, err := GetJSONResponse[insightsResponse](ctx, s.client, prompt)
	s.record(ctx, "insights", usage, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	if result.SuggestedKPIs == nil {
		return nil, core.NewMalformedResponseError("suggested_kpis")
	}
	if result.DataQualitySummary == "" {
		return nil, core.NewMalformedResponseError("data_quality_summary")
	}

	return &profile.AIInsights{
		SuggestedKPIs:      result.SuggestedKPIs,
		DataQualitySummary: result.DataQualitySummary,
	}, nil
}

// GetCleaningSuggestions returns remedies for one column issue
func (s *OpenAISuggester) GetCleaningSuggestions(ctx context.Context, issue profile.Issue) ([]ports.CleaningSuggestion, error) {
	var condition string
	switch issue.Kind {
	case profile.IssueMissingValues:
		condition = fmt.Sprintf("%d of %d rows are missing a value", issue.MissingCount, issue.RowCount)
	case profile.IssueMixedType:
		condition = fmt.Sprintf("%d of %d rows hold non-numeric values in an otherwise numeric column", issue.NonNumericCount, issue.RowCount)
	default:
		// Unrecognized issue kinds yield no suggestions, not an error
		return []ports.CleaningSuggestion{}, nil
	}

	prompt := fmt.Sprintf(`Column %q in file %q has a data-quality issue: %s.

Respond with JSON:
{"suggestions": [{"action_kind": "...", "description": "...", "parameters": {}}]}

Allowed action_kind values: remove_rows, fill_mean, fill_median, fill_mode, fill_custom, change_type, trim_whitespace.
Order suggestions from most to least recommended.`, issue.ColumnName, issue.FileName, condition)

	type suggestionsResponse struct {
		Suggestions []ports.CleaningSuggestion `json:"suggestions"`
	}

	start := time.Now()
	result, usage, err := GetJSONResponse[suggestionsResponse](ctx, s.client, prompt)
	s.record(ctx, "cleaning", usage, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	if result.Suggestions == nil {
		return nil, core.NewMalformedResponseError("suggestions")
	}
	for i, suggestion := range result.Suggestions {
		if suggestion.ActionKind == "" {
			return nil, core.NewMalformedResponseError(fmt.Sprintf("suggestions[%d].action_kind", i))
		}
		if suggestion.Description == "" {
			return nil, core.NewMalformedResponseError(fmt.Sprintf("suggestions[%d].description", i))
		}
	}

	return result.Suggestions, nil
}

// GetRelationshipSuggestions proposes join keys across the profiled files
func (s *OpenAISuggester) GetRelationshipSuggestions(ctx context.Context, profiles []*profile.FileProfile) ([]ports.RelationshipSuggestion, error) {
	if len(profiles) < 2 {
		return []ports.RelationshipSuggestion{}, nil
	}

	summaries := make([]profileSummary, len(profiles))
	for i, p := range profiles {
		summaries[i] = summarizeProfile(p)
	}
	payload, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	prompt := fmt.Sprintf(`These tables were uploaded to a BI data model. Suggest likely join relationships.

Respond with JSON:
{"relationships": [{"from_table": "...", "from_column": "...", "to_table": "...", "to_column": "...", "relationship_kind": "one-to-many", "confidence": 0.9, "reason": "..."}]}

relationship_kind must be one-to-one, one-to-many, or many-to-many.
confidence is 0..1. Only suggest pairings supported by the column evidence.

Tables:
%s`, string(payload))

	type relationshipsResponse struct {
		Relationships []ports.RelationshipSuggestion `json:"relationships"`
	}

	start := time.Now()
	result, usage, err := GetJSONResponse[relationshipsResponse](ctx, s.client, prompt)
	s.record(ctx, "relationships", usage, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	if result.Relationships == nil {
		return nil, core.NewMalformedResponseError("relationships")
	}
	for i, rel := range result.Relationships {
		if rel.FromTable == "" || rel.FromColumn == "" || rel.ToTable == "" || rel.ToColumn == "" {
			return nil, core.NewMalformedResponseError(fmt.Sprintf("relationships[%d]", i))
		}
	}

	return result.Relationships, nil
}

// GetDaxFormula converts a natural-language prompt into a DAX payload
func (s *OpenAISuggester) GetDaxFormula(ctx context.Context, naturalLanguagePrompt string) (*ports.DaxResult, error) {
	prompt := fmt.Sprintf(`Write a DAX formula for this request: %q

Respond with JSON:
{"dax_formula": "...", "explanation": "...", "optimization_tips": ["..."], "common_pitfalls": ["..."]}

explanation may use markdown. optimization_tips and common_pitfalls each hold 2-4 short strings.`, naturalLanguagePrompt)

	start := time.Now()
	result, usage, err := GetJSONResponse[ports.DaxResult](ctx, s.client, prompt)
	s.record(ctx, "dax", usage, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSuggestionFailed, err)
	}

	if result.DaxFormula == "" {
		return nil, core.NewMalformedResponseError("dax_formula")
	}
	if result.Explanation == "" {
		return nil, core.NewMalformedResponseError("explanation")
	}
	if result.OptimizationTips == nil {
		return nil, core.NewMalformedResponseError("optimization_tips")
	}
	if result.CommonPitfalls == nil {
		return nil, core.NewMalformedResponseError("common_pitfalls")
	}

	return result, nil
}

// record sends usage accounting to the ledger, swallowing failures
func (s *OpenAISuggester) record(ctx context.Context, operation string, usage *ports.UsageData, duration time.Duration, succeeded bool) {
	if s.usage == nil || usage == nil {
		return
	}
	rec := ports.UsageRecord{
		Operation:  operation,
		Usage:      *usage,
		DurationMs: duration.Milliseconds(),
		Succeeded:  succeeded,
	}
	if err := s.usage.Record(ctx, rec); err != nil {
		log.Printf("[OpenAISuggester] Failed to record usage for %s: %v", operation, err)
	}
}
