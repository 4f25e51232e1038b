package api

import (
	"github.com/gin-gonic/gin"

	"prompter/internal/story"
)

func (s *Server) getDraft(c *gin.Context) {
	draft, found, err := s.workspace(c).Drafts.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		s.writeError(c, notFound("no saved draft"))
		return
	}
	ok(c, draft)
}

func (s *Server) saveDraft(c *gin.Context) {
	var draft story.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.writeError(c, validationError("invalid draft"))
		return
	}
	if err := draft.Validate(s.cfg.Limits.MaxStorySlides); err != nil {
		s.writeError(c, validationError(err.Error()))
		return
	}
	if err := s.workspace(c).Drafts.Save(c.Request.Context(), &draft); err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, draft)
}

func (s *Server) clearDraft(c *gin.Context) {
	if err := s.workspace(c).Drafts.Clear(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, gin.H{"cleared": true})
}

func (s *Server) getPreview(c *gin.Context) {
	ok(c, s.workspace(c).Preview.Snapshot())
}

// receivePreviewMessage feeds a raw UPDATE_STORY message to the caller's
// preview. A rejected message leaves the preview in its error state.
func (s *Server) receivePreviewMessage(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, validationError("unreadable message body"))
		return
	}
	preview, err := s.workspace(c).Preview.Receive(body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, preview)
}
