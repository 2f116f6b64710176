package ui

import (
	"net/http"

	"daxforge/domain/cleaning"
	"daxforge/domain/core"
	"daxforge/domain/profile"

	"github.com/gin-gonic/gin"
)

// handleGetCleaningSuggestions asks the collaborator for remedies for one
// column issue. The issue is rebuilt from the current profile so suggestions
// always describe the statistics the user is looking at.
func (s *Server) handleGetCleaningSuggestions(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}
	column := c.Param("column")
	kind := profile.IssueKind(c.Param("kind"))
	if kind != profile.IssueMissingValues && kind != profile.IssueMixedType {
		respondInvalid(c, "issue kind must be missing_values or mixed_type")
		return
	}

	p, err := s.store.Profile(sessionID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	col := p.Column(column)
	if col == nil {
		respondError(c, core.NewNotFoundError("column", column))
		return
	}

	issue := profile.Issue{
		FileName:   p.FileName,
		ColumnName: col.Name,
		Kind:       kind,
		RowCount:   p.RowCount,
	}
	switch kind {
	case profile.IssueMissingValues:
		issue.MissingCount = col.MissingValues
	case profile.IssueMixedType:
		issue.NonNumericCount = col.NonNumericCount
	}

	suggestions, err := s.suggester.GetCleaningSuggestions(c.Request.Context(), issue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions":     suggestions,
		"profile_version": p.Version,
	})
}

// selectionRequest is the wire shape of one staged cleaning action
type selectionRequest struct {
	ActionKind string `json:"action_kind" binding:"required"`
	Value      string `json:"value"`
	Target     string `json:"target"`
}

// handleStageSelection stages a cleaning action for one column, replacing
// any prior selection for that column
func (s *Server) handleStageSelection(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}
	column := c.Param("column")

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "request body must carry action_kind")
		return
	}

	action, err := cleaning.ParseAction(req.ActionKind, req.Value, req.Target)
	if err != nil {
		respondInvalid(c, err.Error())
		return
	}

	if err := s.store.StageSelection(sessionID, fileID, column, action); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":      column,
		"action_kind": string(action.Kind()),
	})
}

// handleUnstageSelection removes the staged selection for one column
func (s *Server) handleUnstageSelection(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	if err := s.store.UnstageSelection(sessionID, fileID, c.Param("column")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// handleListSelections returns the staged action kind per column
func (s *Server) handleListSelections(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	kinds, err := s.store.Selections(sessionID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selections": kinds})
}

// handleApplyCleaning simulates every staged selection against the profile
// and commits the replacement in one step
func (s *Server) handleApplyCleaning(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	updated, err := s.store.ApplyCleaning(sessionID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": updated})
}
