package ports

import "context"

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// UsageRecord is one collaborator call for the operational ledger
type UsageRecord struct {
	Operation  string `json:"operation"` // "insights", "cleaning", "relationships", "dax"
	Usage      UsageData
	DurationMs int64 `json:"duration_ms"`
	Succeeded  bool  `json:"succeeded"`
}

// UsageRecorder persists collaborator usage accounting. Recording failures
// are logged and swallowed by callers; accounting never blocks the wizard.
type UsageRecorder interface {
	Record(ctx context.Context, rec UsageRecord) error
}
