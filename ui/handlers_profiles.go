package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleGetProfile returns the statistical profile for one file
func (s *Server) handleGetProfile(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	p, err := s.store.Profile(sessionID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"profile": p}
	if p.AIInsights != nil {
		// The quality summary may carry markdown; ship a rendered copy so
		// the frontend does not need its own renderer.
		response["data_quality_summary_html"] = renderMarkdown(p.AIInsights.DataQualitySummary)
	}
	c.JSON(http.StatusOK, response)
}

// handleGetIssues recomputes the issue descriptors for one file's profile
func (s *Server) handleGetIssues(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	p, err := s.store.Profile(sessionID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":          s.detector.Detect(p),
		"profile_version": p.Version,
	})
}
