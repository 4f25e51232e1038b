package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"prompter/internal/config"
	"prompter/internal/store"
)

// ScriptQuerier is the read side of store.Store exposed as tools.
type ScriptQuerier interface {
	GetScript(ctx context.Context, id, ownerID string) (*store.Script, error)
	ListScripts(ctx context.Context, ownerID, tag string) ([]store.ScriptSummary, error)
	SearchScripts(ctx context.Context, ownerID, query string) ([]store.SearchResult, error)
}

type Options struct {
	// Owner scopes every script tool to one user's scripts.
	Owner     string
	MaxSlides int
	Presets   *config.Presets
	Logger    *zap.Logger
}

type Server struct {
	db     ScriptQuerier
	opts   Options
	logger *zap.Logger
	mcp    *sdk.Server
}

func NewServer(db ScriptQuerier, version string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		db:     db,
		opts:   opts,
		logger: logger.Named("mcp"),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "prompter",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.logger.Info("serving MCP tools", zap.String("owner", s.opts.Owner))
	return s.mcp.Run(ctx, transport)
}
