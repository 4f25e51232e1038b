package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"prompter/internal/state"
)

func (s *Server) getContent(c *gin.Context) {
	ok(c, s.workspace(c).Content.Snapshot())
}

func (s *Server) patchContent(c *gin.Context) {
	var patch state.ContentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.writeError(c, validationError("invalid content patch"))
		return
	}
	ok(c, s.workspace(c).Content.SetAll(c.Request.Context(), patch))
}

// resetContent restores defaults. scope=content keeps media, scope=media keeps
// the text.
func (s *Server) resetContent(c *gin.Context) {
	ctx := c.Request.Context()
	content := s.workspace(c).Content
	switch scope := c.DefaultQuery("scope", "all"); scope {
	case "all":
		ok(c, content.Reset(ctx))
	case "content":
		ok(c, content.ResetContent(ctx))
	case "media":
		ok(c, content.ResetMedia(ctx))
	default:
		s.writeError(c, validationError(fmt.Sprintf("unknown reset scope %q", scope)))
	}
}

func (s *Server) getConfig(c *gin.Context) {
	ok(c, s.workspace(c).Config.Snapshot())
}

func (s *Server) replaceConfig(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		s.writeError(c, validationError("invalid request body"))
		return
	}
	cfg, err := decodeConfig(raw)
	if err != nil {
		s.writeError(c, err)
		return
	}
	configs := s.workspace(c).Config
	configs.SetAll(c.Request.Context(), cfg)
	ok(c, configs.Snapshot())
}

func (s *Server) patchConfig(c *gin.Context) {
	var patch state.Partial
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.writeError(c, validationError("config patch must be a JSON object"))
		return
	}

	ctx := c.Request.Context()
	configs := s.workspace(c).Config
	var err error
	switch section := c.Param("section"); section {
	case "typography":
		err = configs.SetTypography(ctx, patch)
	case "colors":
		err = configs.SetColors(ctx, patch)
	case "effects":
		err = configs.SetEffects(ctx, patch)
	case "layout":
		err = configs.SetLayout(ctx, patch)
	case "animations":
		err = configs.SetAnimations(ctx, patch)
	default:
		err = notFound(fmt.Sprintf("unknown config section %q", section))
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, configs.Snapshot())
}

func (s *Server) resetConfig(c *gin.Context) {
	configs := s.workspace(c).Config
	configs.Reset(c.Request.Context())
	ok(c, configs.Snapshot())
}

// undoConfig answers with the snapshot whether or not a step was undone;
// "applied" tells the two apart.
func (s *Server) undoConfig(c *gin.Context) {
	configs := s.workspace(c).Config
	applied := configs.PerformUndo(c.Request.Context())
	ok(c, gin.H{"applied": applied, "config": configs.Snapshot()})
}

func (s *Server) redoConfig(c *gin.Context) {
	configs := s.workspace(c).Config
	applied := configs.PerformRedo(c.Request.Context())
	ok(c, gin.H{"applied": applied, "config": configs.Snapshot()})
}

func (s *Server) clearConfigHistory(c *gin.Context) {
	configs := s.workspace(c).Config
	configs.ClearHistory()
	ok(c, configs.Snapshot())
}

func (s *Server) listPresets(c *gin.Context) {
	names := s.workspace(c).PresetNames()
	if names == nil {
		names = []string{}
	}
	ok(c, names)
}

func (s *Server) applyPreset(c *gin.Context) {
	ws := s.workspace(c)
	if err := ws.LoadPreset(c.Request.Context(), c.Param("name")); err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, ws.Config.Snapshot())
}

type playbackPatch struct {
	Elapsed        *float64 `json:"elapsed"`
	ScrollSpeed    *float64 `json:"scrollSpeed"`
	ScrollPosition *float64 `json:"scrollPosition"`
}

func (s *Server) getPlayback(c *gin.Context) {
	ok(c, s.workspace(c).Playback.Snapshot())
}

func (s *Server) patchPlayback(c *gin.Context) {
	var patch playbackPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.writeError(c, validationError("invalid playback patch"))
		return
	}
	playback := s.workspace(c).Playback
	if patch.Elapsed != nil {
		playback.SetElapsed(*patch.Elapsed)
	}
	if patch.ScrollSpeed != nil {
		playback.SetScrollSpeed(*patch.ScrollSpeed)
	}
	if patch.ScrollPosition != nil {
		playback.SetScrollPosition(*patch.ScrollPosition)
	}
	ok(c, playback.Snapshot())
}

func (s *Server) tickPlayback(c *gin.Context) {
	var req struct {
		DT float64 `json:"dt" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("dt must be a non-negative number of seconds"))
		return
	}
	ok(c, s.workspace(c).Playback.Tick(req.DT))
}

func (s *Server) playbackAction(c *gin.Context) {
	playback := s.workspace(c).Playback
	switch action := c.Param("action"); action {
	case "play":
		ok(c, playback.Play())
	case "pause":
		ok(c, playback.Pause())
	case "toggle":
		ok(c, playback.Toggle())
	case "reset":
		ok(c, playback.Reset())
	default:
		s.writeError(c, notFound(fmt.Sprintf("unknown playback action %q", action)))
	}
}

func (s *Server) getNav(c *gin.Context) {
	ok(c, s.workspace(c).Story.Snapshot())
}

func (s *Server) navAction(c *gin.Context) {
	ctx := c.Request.Context()
	nav := s.workspace(c).Story
	switch action := c.Param("action"); action {
	case "next":
		ok(c, nav.NextSlide(ctx))
	case "previous":
		ok(c, nav.PreviousSlide(ctx))
	case "toggle-pause":
		ok(c, nav.TogglePause(ctx))
	case "reset":
		ok(c, nav.Reset(ctx))
	default:
		s.writeError(c, notFound(fmt.Sprintf("unknown navigation action %q", action)))
	}
}

func (s *Server) gotoSlide(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("index is required"))
		return
	}
	ok(c, s.workspace(c).Story.GoToSlide(c.Request.Context(), *req.Index))
}

// setProgress records slide progress. override marks a progress value set by
// the user rather than by the slide timer.
func (s *Server) setProgress(c *gin.Context) {
	var req struct {
		Progress *float64 `json:"progress" binding:"required"`
		Override bool     `json:"override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("progress is required"))
		return
	}
	ctx := c.Request.Context()
	nav := s.workspace(c).Story
	if req.Override {
		ok(c, nav.SetProgressOverride(ctx, *req.Progress))
		return
	}
	ok(c, nav.SetSlideProgress(ctx, *req.Progress))
}
