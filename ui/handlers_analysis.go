package ui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// handleGetRelationships proposes join keys across the session's profiled
// files. With fewer than two profiles the response is an empty list.
func (s *Server) handleGetRelationships(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}

	profiles, err := s.store.Profiles(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	relationships, err := s.suggester.GetRelationshipSuggestions(c.Request.Context(), profiles)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"relationships": relationships,
		"file_count":    len(profiles),
	})
}

// daxRequest is the wire shape of a natural-language DAX request
type daxRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// handleGenerateDax converts a natural-language prompt into a DAX payload.
// The explanation ships both raw (markdown) and rendered to HTML.
func (s *Server) handleGenerateDax(c *gin.Context) {
	var req daxRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		respondInvalid(c, "request body must carry a non-empty prompt")
		return
	}

	result, err := s.suggester.GetDaxFormula(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dax_formula":       result.DaxFormula,
		"explanation":       result.Explanation,
		"explanation_html":  renderMarkdown(result.Explanation),
		"optimization_tips": result.OptimizationTips,
		"common_pitfalls":   result.CommonPitfalls,
	})
}

// renderMarkdown converts collaborator markdown to HTML for the frontend
func renderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})
	return string(markdown.Render(doc, renderer))
}
