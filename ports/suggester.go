package ports

import (
	"context"

	"daxforge/domain/profile"
)

// CleaningSuggestion is one proposed remedy for a column issue
type CleaningSuggestion struct {
	ActionKind  string            `json:"action_kind"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// RelationshipSuggestion is a proposed join key pairing between two files
type RelationshipSuggestion struct {
	FromTable        string  `json:"from_table"`
	FromColumn       string  `json:"from_column"`
	ToTable          string  `json:"to_table"`
	ToColumn         string  `json:"to_column"`
	RelationshipKind string  `json:"relationship_kind"` // "one-to-one", "one-to-many", "many-to-many"
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

// DaxResult is the structured response for a natural-language DAX request
type DaxResult struct {
	DaxFormula       string   `json:"dax_formula"`
	Explanation      string   `json:"explanation"`
	OptimizationTips []string `json:"optimization_tips"`
	CommonPitfalls   []string `json:"common_pitfalls"`
}

// Suggester is the external suggestion/insight collaborator. Implementations
// are network-bound and fallible; the core never trusts partial responses -
// any missing required field must surface as an error, not a degraded value.
type Suggester interface {
	// GetInsights returns KPI and data-quality commentary for one profile
	GetInsights(ctx context.Context, p *profile.FileProfile, fileName string) (*profile.AIInsights, error)

	// GetCleaningSuggestions returns remedies for one issue. An unrecognized
	// issue kind yields an empty slice, not an error.
	GetCleaningSuggestions(ctx context.Context, issue profile.Issue) ([]CleaningSuggestion, error)

	// GetRelationshipSuggestions proposes join keys across profiled files.
	// Returns an empty slice when fewer than two profiles are supplied.
	GetRelationshipSuggestions(ctx context.Context, profiles []*profile.FileProfile) ([]RelationshipSuggestion, error)

	// GetDaxFormula converts a natural-language prompt into a DAX payload
	GetDaxFormula(ctx context.Context, naturalLanguagePrompt string) (*DaxResult, error)
}
