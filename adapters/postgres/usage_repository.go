// Package postgres holds the optional operational ledger for collaborator
// usage. Session state (files, profiles, selections) is never persisted;
// only token accounting lands here.
package postgres

import (
	"context"
	"time"

	"daxforge/ports"

	"github.com/jmoiron/sqlx"
)

// UsageRepositoryImpl implements ports.UsageRecorder for PostgreSQL
type UsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewUsageRepository creates a new PostgreSQL usage repository
func NewUsageRepository(db *sqlx.DB) ports.UsageRecorder {
	return &UsageRepositoryImpl{db: db}
}

// usageRow is the table shape of one recorded collaborator call
type usageRow struct {
	Operation        string    `db:"operation"`
	Provider         string    `db:"provider"`
	Model            string    `db:"model"`
	PromptTokens     int       `db:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens"`
	DurationMs       int64     `db:"duration_ms"`
	Succeeded        bool      `db:"succeeded"`
	CreatedAt        time.Time `db:"created_at"`
}

// Record inserts one collaborator call into the ledger
func (r *UsageRepositoryImpl) Record(ctx context.Context, rec ports.UsageRecord) error {
	row := usageRow{
		Operation:        rec.Operation,
		Provider:         rec.Usage.Provider,
		Model:            rec.Usage.Model,
		PromptTokens:     rec.Usage.PromptTokens,
		CompletionTokens: rec.Usage.CompletionTokens,
		TotalTokens:      rec.Usage.TotalTokens,
		DurationMs:       rec.DurationMs,
		Succeeded:        rec.Succeeded,
		CreatedAt:        time.Now(),
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			operation, provider, model,
			prompt_tokens, completion_tokens, total_tokens,
			duration_ms, succeeded, created_at
		) VALUES (
			:operation, :provider, :model,
			:prompt_tokens, :completion_tokens, :total_tokens,
			:duration_ms, :succeeded, :created_at
		)
	`, row)
	return err
}

// EnsureSchema creates the ledger table when it does not exist
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS llm_usage (
			id BIGSERIAL PRIMARY KEY,
			operation TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens INT NOT NULL DEFAULT 0,
			completion_tokens INT NOT NULL DEFAULT 0,
			total_tokens INT NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			succeeded BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}
