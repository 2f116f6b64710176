package session

import (
	"bytes"
	"context"
	"fmt"

	"daxforge/domain/core"
	"daxforge/internal"
	"daxforge/internal/api"
	profiling "daxforge/internal/profile"
	"daxforge/internal/tabular"
	"daxforge/ports"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentPipelines caps parallel file ingestion per batch
const maxConcurrentPipelines = 4

// Pipeline drives one file through parse -> profile -> insights. Each file
// advances through an explicit status machine (pending -> profiling ->
// insights_pending -> complete | error); a file failure never blocks other
// files' pipelines.
type Pipeline struct {
	store      *Store
	parser     *tabular.Parser
	aggregator *profiling.Aggregator
	suggester  ports.Suggester
	hub        *api.SSEHub
	logger     *internal.Logger
}

// NewPipeline creates a pipeline. The suggester may be nil, in which case
// the insights stage is skipped and files complete after profiling.
func NewPipeline(store *Store, suggester ports.Suggester, hub *api.SSEHub) *Pipeline {
	return &Pipeline{
		store:      store,
		parser:     tabular.NewParser(),
		aggregator: profiling.NewAggregator(),
		suggester:  suggester,
		hub:        hub,
		logger:     internal.NewDefaultLogger(),
	}
}

// Upload is one raw file queued for ingestion
type Upload struct {
	FileID   core.FileID
	Filename string
	Data     []byte
}

// Run executes the full pipeline for one file
func (p *Pipeline) Run(ctx context.Context, sessionID core.SessionID, upload Upload) error {
	p.logger.Info("[Pipeline] Starting pipeline for %s (file %s)", upload.Filename, upload.FileID)

	p.transition(sessionID, upload.FileID, upload.Filename, StatusProfiling, 20, "Parsing and profiling file")

	table, err := p.parser.Parse(upload.Filename, bytes.NewReader(upload.Data))
	if err != nil {
		return p.fail(sessionID, upload, fmt.Errorf("parse failed: %w", err))
	}

	fileProfile := p.aggregator.BuildProfile(upload.Filename, table)
	if err := p.store.SetProfile(sessionID, upload.FileID, fileProfile); err != nil {
		return p.fail(sessionID, upload, err)
	}

	if p.suggester == nil {
		p.transition(sessionID, upload.FileID, upload.Filename, StatusComplete, 100, "Profile ready")
		return nil
	}

	p.transition(sessionID, upload.FileID, upload.Filename, StatusInsightsPending, 60, "Requesting AI insights")

	// The request is tagged with the profile version it targets; a response
	// arriving after the profile has been replaced is dropped.
	targetVersion := fileProfile.Version
	insights, err := p.suggester.GetInsights(ctx, fileProfile, upload.Filename)
	if err != nil {
		// Insights are a decoration: the profile stays usable, the file
		// surfaces the collaborator error and can be retried.
		p.logger.Warn("[Pipeline] Insights failed for %s: %v", upload.Filename, err)
		return p.fail(sessionID, upload, fmt.Errorf("insights failed: %w", err))
	}

	applied, err := p.store.AttachInsights(sessionID, upload.FileID, targetVersion, insights)
	if err != nil {
		return p.fail(sessionID, upload, err)
	}
	if !applied {
		p.logger.Warn("[Pipeline] Dropped stale insights for %s (profile version moved past %d)",
			upload.Filename, targetVersion)
	}

	p.transition(sessionID, upload.FileID, upload.Filename, StatusComplete, 100, "Profile ready")
	return nil
}

// RetryInsights re-runs only the insights stage for a completed-or-failed
// file, re-triggering the same pipeline step on user action
func (p *Pipeline) RetryInsights(ctx context.Context, sessionID core.SessionID, fileID core.FileID) error {
	if p.suggester == nil {
		return core.ErrSuggestionFailed
	}

	fileProfile, err := p.store.Profile(sessionID, fileID)
	if err != nil {
		return err
	}

	p.transition(sessionID, fileID, fileProfile.FileName, StatusInsightsPending, 60, "Requesting AI insights")

	insights, err := p.suggester.GetInsights(ctx, fileProfile, fileProfile.FileName)
	if err != nil {
		p.transition(sessionID, fileID, fileProfile.FileName, StatusError, 0, err.Error())
		return err
	}

	if _, err := p.store.AttachInsights(sessionID, fileID, fileProfile.Version, insights); err != nil {
		return err
	}
	p.transition(sessionID, fileID, fileProfile.FileName, StatusComplete, 100, "Profile ready")
	return nil
}

// RunBatch ingests several files concurrently. The pipelines are fully
// independent; per-file failures are recorded on the file, never returned.
func (p *Pipeline) RunBatch(ctx context.Context, sessionID core.SessionID, uploads []Upload) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPipelines)

	for _, upload := range uploads {
		upload := upload
		g.Go(func() error {
			if err := p.Run(ctx, sessionID, upload); err != nil {
				p.logger.Error("[Pipeline] File %s failed: %v", upload.Filename, err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

// fail records the error on the file and broadcasts the transition
func (p *Pipeline) fail(sessionID core.SessionID, upload Upload, err error) error {
	p.transition(sessionID, upload.FileID, upload.Filename, StatusError, 0, err.Error())
	return err
}

// transition updates the stored status and broadcasts it over SSE
func (p *Pipeline) transition(sessionID core.SessionID, fileID core.FileID, fileName string, status FileStatus, progress float64, message string) {
	errMsg := ""
	if status == StatusError {
		errMsg = message
	}
	if err := p.store.SetStatus(sessionID, fileID, status, errMsg); err != nil {
		p.logger.Error("[Pipeline] Failed to update status for file %s: %v", fileID, err)
	}

	if p.hub != nil {
		p.hub.Broadcast(api.PipelineEvent{
			SessionID: sessionID.String(),
			FileID:    fileID.String(),
			FileName:  fileName,
			EventType: "status_changed",
			Status:    string(status),
			Progress:  progress,
			Message:   message,
		})
	}
}
