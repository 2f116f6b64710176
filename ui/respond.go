package ui

import (
	"log"
	"net/http"

	"daxforge/domain/core"
	"daxforge/domain/tabular"
	apperrors "daxforge/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses with a JSON body
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)

	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case core.IsParseError(err) || tabular.IsParseError(err):
		status = http.StatusBadRequest
		code = apperrors.CodeParseError
	case err == core.ErrFileNotReady:
		status = http.StatusConflict
		code = apperrors.CodeInvalidInput
	case core.IsSuggestionError(err):
		status = http.StatusBadGateway
		code = apperrors.CodeSuggestionError
	}

	if status == http.StatusInternalServerError {
		log.Printf("[Server] Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// respondInvalid rejects a request with a 400 and the validation message
func respondInvalid(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": apperrors.CodeInvalidInput})
}

// pathSessionID parses the session ID path parameter
func pathSessionID(c *gin.Context) (core.SessionID, bool) {
	id, err := core.ParseSessionID(c.Param("sessionID"))
	if err != nil {
		respondInvalid(c, err.Error())
		return "", false
	}
	return id, true
}

// pathFileID parses the file ID path parameter
func pathFileID(c *gin.Context) (core.FileID, bool) {
	id, err := core.ParseFileID(c.Param("fileID"))
	if err != nil {
		respondInvalid(c, err.Error())
		return "", false
	}
	return id, true
}
