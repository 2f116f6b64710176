package ui

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"daxforge/internal/session"
	"daxforge/internal/tabular"

	"github.com/gin-gonic/gin"
)

// handleCreateSession registers a new wizard session
func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.store.CreateSession()
	log.Printf("[Server] Created session %s", sess.ID)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID.String(),
		"created_at": sess.CreatedAt,
	})
}

// handleRemoveSession deletes a session and every profile it owns
func (s *Server) handleRemoveSession(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	s.store.RemoveSession(sessionID)
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// handleFileUpload accepts one or more files under the multipart field
// "files" and queues each through the ingestion pipeline. The response
// returns immediately with the queued file IDs; progress streams over SSE.
func (s *Server) handleFileUpload(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	// Uploading to an unknown session creates it: the frontend mints its
	// session ID before the first request.
	s.store.EnsureSession(sessionID)

	form, err := c.MultipartForm()
	if err != nil {
		respondInvalid(c, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		respondInvalid(c, "no files in upload; use multipart field 'files'")
		return
	}

	maxBytes := s.config.Upload.MaxFileSizeMB << 20
	uploads := make([]session.Upload, 0, len(fileHeaders))
	queued := make([]gin.H, 0, len(fileHeaders))

	for _, header := range fileHeaders {
		if !tabular.SupportedExtension(header.Filename) {
			respondInvalid(c, fmt.Sprintf("unsupported file type for %q; accepted: .csv, .xlsx, .xls, .json", header.Filename))
			return
		}
		if header.Size > maxBytes {
			respondInvalid(c, fmt.Sprintf("file %q exceeds the %dMB upload limit", header.Filename, s.config.Upload.MaxFileSizeMB))
			return
		}

		f, err := header.Open()
		if err != nil {
			respondInvalid(c, fmt.Sprintf("failed to open %q: %v", header.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondInvalid(c, fmt.Sprintf("failed to read %q: %v", header.Filename, err))
			return
		}

		fileID, err := s.store.AddFile(sessionID, header.Filename)
		if err != nil {
			respondError(c, err)
			return
		}
		uploads = append(uploads, session.Upload{
			FileID:   fileID,
			Filename: header.Filename,
			Data:     data,
		})
		queued = append(queued, gin.H{
			"file_id":   fileID.String(),
			"file_name": header.Filename,
			"status":    string(session.StatusPending),
		})
	}

	log.Printf("[Server] Queued %d file(s) for session %s", len(uploads), sessionID)
	go s.pipeline.RunBatch(context.Background(), sessionID, uploads)

	c.JSON(http.StatusAccepted, gin.H{"files": queued})
}

// handleListFiles returns every file pipeline in the session, in upload order
func (s *Server) handleListFiles(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	states, err := s.store.FileStates(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": states})
}

// handleRemoveFile deletes one file and its profile from the session
func (s *Server) handleRemoveFile(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}
	if err := s.store.RemoveFile(sessionID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// handleRetryInsights re-runs the insights stage for one file
func (s *Server) handleRetryInsights(c *gin.Context) {
	sessionID, ok := pathSessionID(c)
	if !ok {
		return
	}
	fileID, ok := pathFileID(c)
	if !ok {
		return
	}

	// Validate the file exists before answering 202
	if _, err := s.store.Profile(sessionID, fileID); err != nil {
		respondError(c, err)
		return
	}

	go func() {
		if err := s.pipeline.RetryInsights(context.Background(), sessionID, fileID); err != nil {
			log.Printf("[Server] Insights retry failed for file %s: %v", fileID, err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "retrying"})
}
