package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"prompter/internal/store"
)

// recordingRequest is recording metadata; the media bytes live elsewhere.
type recordingRequest struct {
	ScriptID        string  `json:"scriptId"`
	FileName        string  `json:"fileName" binding:"required"`
	MimeType        string  `json:"mimeType"`
	SizeBytes       int64   `json:"sizeBytes" binding:"gte=0"`
	DurationSeconds float64 `json:"durationSeconds" binding:"gte=0"`
	StoragePath     string  `json:"storagePath"`
}

func (s *Server) listRecordings(c *gin.Context) {
	recordings, err := s.db.ListRecordings(c.Request.Context(), currentUser(c), c.Query("scriptId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, recordings)
}

func (s *Server) createRecording(c *gin.Context) {
	var req recordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("fileName is required and sizes must not be negative"))
		return
	}
	if limit := s.cfg.Limits.MaxRecordingBytes; limit > 0 && req.SizeBytes > limit {
		s.writeError(c, &Error{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("recording is %d bytes, the limit is %d", req.SizeBytes, limit),
		})
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	if req.ScriptID != "" {
		if _, err := s.db.GetScript(ctx, req.ScriptID, user); err != nil {
			s.writeError(c, err)
			return
		}
	}

	rec, err := s.db.CreateRecording(ctx, store.RecordingInput{
		OwnerID:         user,
		ScriptID:        req.ScriptID,
		FileName:        strings.TrimSpace(req.FileName),
		MimeType:        req.MimeType,
		SizeBytes:       req.SizeBytes,
		DurationSeconds: req.DurationSeconds,
		StoragePath:     req.StoragePath,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	created(c, rec)
}

func (s *Server) deleteRecording(c *gin.Context) {
	if err := s.db.DeleteRecording(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}
