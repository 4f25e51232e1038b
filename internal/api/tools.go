package api

import (
	"github.com/gin-gonic/gin"

	"prompter/internal/persist"
	"prompter/internal/preview"
)

type budgetQuery struct {
	Devices *int `form:"devices" binding:"required,gte=0"`
	Chars   int  `form:"chars" binding:"gte=0"`
}

type budgetResponse struct {
	UsageMB        float64        `json:"usageMb"`
	Status         preview.Status `json:"status"`
	MaxDeviceCount int            `json:"maxDeviceCount"`
}

func (s *Server) memoryBudget(c *gin.Context) {
	var q budgetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, validationError("devices is required and counts must not be negative"))
		return
	}
	usage := preview.CalculateMemoryUsage(*q.Devices, q.Chars)
	ok(c, budgetResponse{
		UsageMB:        usage,
		Status:         preview.MemoryStatus(usage),
		MaxDeviceCount: preview.MaxDeviceCount(q.Chars),
	})
}

func (s *Server) canEnableDevice(c *gin.Context) {
	var q struct {
		Current int `form:"current" binding:"gte=0"`
		Chars   int `form:"chars" binding:"gte=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, validationError("counts must not be negative"))
		return
	}
	ok(c, preview.CanEnableDevice(q.Current, q.Chars))
}

type scrollRequest struct {
	ScriptID       string  `json:"scriptId"`
	Content        *string `json:"content"`
	ScrollTop      float64 `json:"scrollTop"`
	ViewportHeight float64 `json:"viewportHeight"`
	ContainerWidth float64 `json:"containerWidth"`
	FontSize       float64 `json:"fontSize"`
	Overscan       *int    `json:"overscan"`
}

// scrollWindow computes the visible paragraphs of a script. Text comes from
// the request, a saved script, or the caller's current content, in that order.
func (s *Server) scrollWindow(c *gin.Context) {
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("invalid scroll request"))
		return
	}

	var text string
	switch {
	case req.Content != nil:
		text = *req.Content
	case req.ScriptID != "":
		script, err := s.db.GetScript(c.Request.Context(), req.ScriptID, currentUser(c))
		if err != nil {
			s.writeError(c, err)
			return
		}
		text = script.Content
	default:
		text = s.workspace(c).Content.Snapshot().Text
	}

	cfg := preview.DefaultScrollConfig()
	if req.ViewportHeight > 0 {
		cfg.ViewportHeight = req.ViewportHeight
	}
	if req.ContainerWidth > 0 {
		cfg.ContainerWidth = req.ContainerWidth
	}
	if req.FontSize > 0 {
		cfg.FontSize = req.FontSize
	}
	if req.Overscan != nil {
		cfg.Overscan = max(*req.Overscan, 0)
	}

	ok(c, preview.CalculateVisibleItems(preview.ParseContentToItems(text), req.ScrollTop, cfg))
}

func (s *Server) probeStorage(c *gin.Context) {
	ok(c, persist.Probe(c.Request.Context(), s.userStorage(c)))
}
