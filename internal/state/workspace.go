package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"prompter/internal/config"
	"prompter/internal/persist"
	"prompter/internal/preview"
	"prompter/internal/story"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Workspace bundles the stores of a single user. Reads across stores are
// independent snapshots.
type Workspace struct {
	User     string
	Content  *ContentStore
	Config   *ConfigStore
	Playback *PlaybackStore
	Story    *story.NavStore
	Drafts   *story.DraftStore
	Preview  *preview.Receiver

	presets *config.Presets
	logger  *zap.Logger
}

// Rehydrate reloads every persisted store from storage. Config history is
// discarded because it no longer describes the loaded document.
func (w *Workspace) Rehydrate(ctx context.Context) error {
	var errs []error
	if err := w.Content.Load(ctx); err != nil {
		errs = append(errs, fmt.Errorf("loading content: %w", err))
	}
	if err := w.Config.Load(ctx); err != nil {
		errs = append(errs, fmt.Errorf("loading config: %w", err))
	}
	if err := w.Story.Load(ctx); err != nil {
		errs = append(errs, fmt.Errorf("loading story navigation: %w", err))
	}
	return errors.Join(errs...)
}

func (w *Workspace) LoadPreset(ctx context.Context, name string) error {
	preset, ok := w.presets.ByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return w.Config.LoadPreset(ctx, preset)
}

func (w *Workspace) PresetNames() []string {
	return w.presets.Names()
}

type RegistryOptions struct {
	HistorySize int
	MaxSlides   int
	Presets     *config.Presets
	Logger      *zap.Logger
}

// Registry creates workspaces on first use. Each workspace sees the shared
// storage through a prefix of its user id.
type Registry struct {
	mu         sync.Mutex
	storage    persist.Storage
	opts       RegistryOptions
	workspaces map[string]*Workspace
}

func NewRegistry(storage persist.Storage, opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	return &Registry{storage: storage, opts: opts, workspaces: make(map[string]*Workspace)}
}

// Get returns the workspace for user, loading its persisted state the first
// time. Load failures are logged and leave defaults in place.
func (r *Registry) Get(ctx context.Context, user string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[user]; ok {
		return ws
	}

	logger := r.opts.Logger.With(zap.String("user", user))
	storage := persist.Prefixed(r.storage, user)
	ws := &Workspace{
		User:     user,
		Content:  NewContentStore(storage, logger),
		Config:   NewConfigStore(storage, r.opts.HistorySize, logger),
		Playback: NewPlaybackStore(),
		Story:    story.NewNavStore(storage, logger),
		Drafts:   story.NewDraftStore(storage, r.opts.MaxSlides),
		Preview:  preview.NewReceiver(r.opts.MaxSlides),
		presets:  r.opts.Presets,
		logger:   logger,
	}
	if err := ws.Rehydrate(ctx); err != nil {
		logger.Error("loading workspace state", zap.Error(err))
	}
	r.workspaces[user] = ws
	return ws
}

// Rehydrate reloads the workspace owning a changed storage key. Keys of
// workspaces that were never opened are ignored.
func (r *Registry) Rehydrate(ctx context.Context, key string) {
	user, _, ok := strings.Cut(key, ":")
	if !ok {
		return
	}

	r.mu.Lock()
	ws, exists := r.workspaces[user]
	r.mu.Unlock()
	if !exists {
		return
	}

	if err := ws.Rehydrate(ctx); err != nil {
		ws.logger.Error("rehydrating workspace", zap.String("key", key), zap.Error(err))
		return
	}
	ws.logger.Info("rehydrated workspace after external change", zap.String("key", key))
}

func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.workspaces))
	for user := range r.workspaces {
		users = append(users, user)
	}
	return users
}
