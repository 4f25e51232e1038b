package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prompter/internal/config"
	"prompter/internal/persist"
	"prompter/internal/state"
	"prompter/internal/store"
)

// Deps are the collaborators of the HTTP surface. Storage must be the same
// storage the registry's workspaces persist to.
type Deps struct {
	Store    store.Store
	Registry *state.Registry
	Storage  persist.Storage
	Config   *config.ProjectConfig
	Logger   *zap.Logger
}

type Server struct {
	db       store.Store
	registry *state.Registry
	storage  persist.Storage
	cfg      *config.ProjectConfig
	logger   *zap.Logger
	engine   *gin.Engine
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		db:       deps.Store,
		registry: deps.Registry,
		storage:  deps.Storage,
		cfg:      deps.Config,
		logger:   logger.Named("http"),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	api := r.Group("/api", s.authenticate())

	scripts := api.Group("/scripts")
	scripts.GET("", s.listScripts)
	scripts.GET("/search", s.searchScripts)
	scripts.POST("", s.createScript)
	scripts.GET("/:id", s.getScript)
	scripts.PUT("/:id", s.updateScript)
	scripts.DELETE("/:id", s.deleteScript)
	scripts.POST("/:id/load", s.loadScript)

	recordings := api.Group("/recordings")
	recordings.GET("", s.listRecordings)
	recordings.POST("", s.createRecording)
	recordings.DELETE("/:id", s.deleteRecording)

	api.GET("/content", s.getContent)
	api.PATCH("/content", s.patchContent)
	api.POST("/content/reset", s.resetContent)

	api.GET("/config", s.getConfig)
	api.PUT("/config", s.replaceConfig)
	api.PATCH("/config/:section", s.patchConfig)
	api.POST("/config/reset", s.resetConfig)
	api.POST("/config/undo", s.undoConfig)
	api.POST("/config/redo", s.redoConfig)
	api.DELETE("/config/history", s.clearConfigHistory)
	api.GET("/presets", s.listPresets)
	api.POST("/config/presets/:name", s.applyPreset)

	api.GET("/playback", s.getPlayback)
	api.PATCH("/playback", s.patchPlayback)
	api.POST("/playback/tick", s.tickPlayback)
	api.POST("/playback/:action", s.playbackAction)

	api.GET("/story/nav", s.getNav)
	api.POST("/story/nav/goto", s.gotoSlide)
	api.POST("/story/nav/progress", s.setProgress)
	api.POST("/story/nav/:action", s.navAction)

	api.GET("/story/draft", s.getDraft)
	api.PUT("/story/draft", s.saveDraft)
	api.DELETE("/story/draft", s.clearDraft)

	api.GET("/preview", s.getPreview)
	api.POST("/preview/message", s.receivePreviewMessage)

	api.GET("/budget", s.memoryBudget)
	api.GET("/budget/can-enable", s.canEnableDevice)
	api.POST("/scroll", s.scrollWindow)
	api.GET("/storage/probe", s.probeStorage)

	return r
}

func (s *Server) workspace(c *gin.Context) *state.Workspace {
	return s.registry.Get(c.Request.Context(), currentUser(c))
}

func (s *Server) userStorage(c *gin.Context) persist.Storage {
	return persist.Prefixed(s.storage, currentUser(c))
}
