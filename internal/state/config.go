package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"prompter/internal/config"
	"prompter/internal/persist"
)

const ConfigKey = "teleprompter-config"

var ErrInvalidPatch = errors.New("invalid config patch")

// Partial is a set of sub-record fields keyed by their JSON names.
type Partial map[string]any

type Typography struct {
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    int     `json:"fontWeight"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	TextAlign     string  `json:"textAlign"`
}

type Colors struct {
	Text              string  `json:"text"`
	Background        string  `json:"background"`
	Highlight         string  `json:"highlight"`
	BackgroundOpacity float64 `json:"backgroundOpacity"`
}

type Effects struct {
	TextShadow   bool    `json:"textShadow"`
	ShadowBlur   float64 `json:"shadowBlur"`
	ShadowColor  string  `json:"shadowColor"`
	Outline      bool    `json:"outline"`
	OutlineWidth float64 `json:"outlineWidth"`
	OutlineColor string  `json:"outlineColor"`
}

type Layout struct {
	Padding          float64 `json:"padding"`
	MaxWidth         float64 `json:"maxWidth"`
	TextPosition     string  `json:"textPosition"`
	MirrorHorizontal bool    `json:"mirrorHorizontal"`
	MirrorVertical   bool    `json:"mirrorVertical"`
}

type Animations struct {
	ScrollSpeed        float64 `json:"scrollSpeed"`
	Countdown          int     `json:"countdown"`
	TransitionType     string  `json:"transitionType"`
	TransitionDuration float64 `json:"transitionDuration"`
}

type ConfigState struct {
	Typography Typography `json:"typography"`
	Colors     Colors     `json:"colors"`
	Effects    Effects    `json:"effects"`
	Layout     Layout     `json:"layout"`
	Animations Animations `json:"animations"`
}

func DefaultConfig() ConfigState {
	return ConfigState{
		Typography: Typography{
			FontFamily: "Inter",
			FontSize:   48,
			FontWeight: 400,
			LineHeight: 1.6,
			TextAlign:  "center",
		},
		Colors: Colors{
			Text:              "#ffffff",
			Background:        "#000000",
			Highlight:         "#facc15",
			BackgroundOpacity: 1,
		},
		Effects: Effects{
			ShadowBlur:   4,
			ShadowColor:  "#000000",
			OutlineWidth: 1,
			OutlineColor: "#000000",
		},
		Layout: Layout{
			Padding:      32,
			MaxWidth:     960,
			TextPosition: "center",
		},
		Animations: Animations{
			ScrollSpeed:        1,
			Countdown:          3,
			TransitionType:     "fade",
			TransitionDuration: 0.5,
		},
	}
}

// mergePartial overlays patch onto the JSON form of current. Keys that do not
// name a field of T and null values are rejected.
func mergePartial[T any](current T, patch Partial) (T, error) {
	var zero T
	base, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("encoding current value: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(base, &doc); err != nil {
		return zero, fmt.Errorf("decoding current value: %w", err)
	}
	for k, v := range patch {
		if v == nil {
			return zero, fmt.Errorf("%w: %s is null", ErrInvalidPatch, k)
		}
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	var out T
	if err := dec.Decode(&out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out, nil
}

// PresetConfig builds the config a preset describes: defaults with every
// preset section merged over the matching sub-record.
func PresetConfig(p *config.Preset) (ConfigState, error) {
	cfg := DefaultConfig()
	var err error
	if cfg.Typography, err = mergePartial(cfg.Typography, p.Typography); err != nil {
		return ConfigState{}, fmt.Errorf("preset %s typography: %w", p.Name, err)
	}
	if cfg.Colors, err = mergePartial(cfg.Colors, p.Colors); err != nil {
		return ConfigState{}, fmt.Errorf("preset %s colors: %w", p.Name, err)
	}
	if cfg.Effects, err = mergePartial(cfg.Effects, p.Effects); err != nil {
		return ConfigState{}, fmt.Errorf("preset %s effects: %w", p.Name, err)
	}
	if cfg.Layout, err = mergePartial(cfg.Layout, p.Layout); err != nil {
		return ConfigState{}, fmt.Errorf("preset %s layout: %w", p.Name, err)
	}
	if cfg.Animations, err = mergePartial(cfg.Animations, p.Animations); err != nil {
		return ConfigState{}, fmt.Errorf("preset %s animations: %w", p.Name, err)
	}
	return cfg, nil
}

// ConfigSnapshot is the config state together with the undo/redo position.
type ConfigSnapshot struct {
	Config     ConfigState `json:"config"`
	CanUndo    bool        `json:"canUndo"`
	CanRedo    bool        `json:"canRedo"`
	PastSize   int         `json:"pastSize"`
	FutureSize int         `json:"futureSize"`
}

// ConfigStore holds the appearance settings of one workspace and a bounded
// linear undo/redo timeline of them. Only the current state is persisted.
type ConfigStore struct {
	mu      sync.RWMutex
	state   ConfigState
	past    *History[ConfigState]
	future  *History[ConfigState]
	storage persist.Storage
	logger  *zap.Logger
}

func NewConfigStore(storage persist.Storage, historySize int, logger *zap.Logger) *ConfigStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigStore{
		state:   DefaultConfig(),
		past:    NewHistory[ConfigState](historySize),
		future:  NewHistory[ConfigState](historySize),
		storage: storage,
		logger:  logger,
	}
}

// Load replaces the current state with the stored one and clears history.
// Absent or malformed values fall back to defaults.
func (s *ConfigStore) Load(ctx context.Context) error {
	loaded := DefaultConfig()
	found, err := persist.LoadJSON(ctx, s.storage, ConfigKey, &loaded)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.past.Clear()
	s.future.Clear()

	switch {
	case errors.Is(err, persist.ErrMalformed):
		s.logger.Warn("discarding malformed config state", zap.Error(err))
		s.state = DefaultConfig()
		return nil
	case err != nil:
		s.state = DefaultConfig()
		return err
	case !found:
		s.state = DefaultConfig()
		return nil
	}
	s.state = loaded
	return nil
}

func (s *ConfigStore) Snapshot() ConfigSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *ConfigStore) snapshotLocked() ConfigSnapshot {
	return ConfigSnapshot{
		Config:     s.state,
		CanUndo:    s.past.Len() > 0,
		CanRedo:    s.future.Len() > 0,
		PastSize:   s.past.Len(),
		FutureSize: s.future.Len(),
	}
}

func (s *ConfigStore) SetTypography(ctx context.Context, patch Partial) error {
	return s.edit(ctx, func(cfg ConfigState) (ConfigState, error) {
		var err error
		cfg.Typography, err = mergePartial(cfg.Typography, patch)
		return cfg, err
	})
}

func (s *ConfigStore) SetColors(ctx context.Context, patch Partial) error {
	return s.edit(ctx, func(cfg ConfigState) (ConfigState, error) {
		var err error
		cfg.Colors, err = mergePartial(cfg.Colors, patch)
		return cfg, err
	})
}

func (s *ConfigStore) SetEffects(ctx context.Context, patch Partial) error {
	return s.edit(ctx, func(cfg ConfigState) (ConfigState, error) {
		var err error
		cfg.Effects, err = mergePartial(cfg.Effects, patch)
		return cfg, err
	})
}

func (s *ConfigStore) SetLayout(ctx context.Context, patch Partial) error {
	return s.edit(ctx, func(cfg ConfigState) (ConfigState, error) {
		var err error
		cfg.Layout, err = mergePartial(cfg.Layout, patch)
		return cfg, err
	})
}

func (s *ConfigStore) SetAnimations(ctx context.Context, patch Partial) error {
	return s.edit(ctx, func(cfg ConfigState) (ConfigState, error) {
		var err error
		cfg.Animations, err = mergePartial(cfg.Animations, patch)
		return cfg, err
	})
}

// Reset restores the defaults as an ordinary, undoable edit.
func (s *ConfigStore) Reset(ctx context.Context) {
	_ = s.edit(ctx, func(ConfigState) (ConfigState, error) { return DefaultConfig(), nil })
}

// SetAll replaces the whole config and discards the undo/redo timeline.
func (s *ConfigStore) SetAll(ctx context.Context, cfg ConfigState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = cfg
	s.past.Clear()
	s.future.Clear()
	s.persistLocked(ctx)
}

func (s *ConfigStore) LoadPreset(ctx context.Context, preset *config.Preset) error {
	cfg, err := PresetConfig(preset)
	if err != nil {
		return err
	}
	s.SetAll(ctx, cfg)
	return nil
}

// PerformUndo restores the newest past state. It reports false and changes
// nothing when there is nothing to undo.
func (s *ConfigStore) PerformUndo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.past.Pop()
	if !ok {
		return false
	}
	s.future.Push(s.state)
	s.state = prev
	s.persistLocked(ctx)
	return true
}

func (s *ConfigStore) PerformRedo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.future.Pop()
	if !ok {
		return false
	}
	s.past.Push(s.state)
	s.state = next
	s.persistLocked(ctx)
	return true
}

func (s *ConfigStore) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.past.Len() > 0
}

func (s *ConfigStore) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.future.Len() > 0
}

func (s *ConfigStore) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.past.Clear()
	s.future.Clear()
}

func (s *ConfigStore) ResetHistory() {
	s.ClearHistory()
}

func (s *ConfigStore) edit(ctx context.Context, transition func(ConfigState) (ConfigState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := transition(s.state)
	if err != nil {
		return err
	}
	if s.past.Push(s.state) {
		s.logger.Debug("config history full, evicted oldest entry", zap.Int("capacity", s.past.Cap()))
	}
	s.future.Clear()
	s.state = next
	s.persistLocked(ctx)
	return nil
}

func (s *ConfigStore) persistLocked(ctx context.Context) {
	if err := persist.SaveJSON(ctx, s.storage, ConfigKey, s.state); err != nil {
		s.logger.Warn("persisting config state", zap.String("key", ConfigKey), zap.Error(err))
	}
}
