package story

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"prompter/internal/persist"
)

const NavKey = "story-navigation"

// Direction values record how the last navigation moved.
const (
	Backward = -1
	Still    = 0
	Forward  = 1
)

type NavState struct {
	CurrentSlideIndex int     `json:"currentSlideIndex"`
	Direction         int     `json:"direction"`
	IsPaused          bool    `json:"isPaused"`
	SlideProgress     float64 `json:"slideProgress"`
}

// navCodec versions the persisted navigation state. Version 1 stored the
// index as "currentSlide" and had no direction.
var navCodec = persist.Codec{
	Version: 2,
	Migrations: map[int]persist.Migration{
		1: func(doc map[string]any) (map[string]any, error) {
			if idx, ok := doc["currentSlide"]; ok {
				if _, exists := doc["currentSlideIndex"]; !exists {
					doc["currentSlideIndex"] = idx
				}
				delete(doc, "currentSlide")
			}
			doc["direction"] = Still
			return doc, nil
		},
	},
}

func clampProgress(v float64) float64 {
	return min(max(v, 0), 1)
}

func nextSlide(s NavState) NavState {
	return NavState{
		CurrentSlideIndex: s.CurrentSlideIndex + 1,
		Direction:         Forward,
		IsPaused:          s.IsPaused,
	}
}

func previousSlide(s NavState) NavState {
	return NavState{
		CurrentSlideIndex: max(s.CurrentSlideIndex-1, 0),
		Direction:         Backward,
		IsPaused:          s.IsPaused,
	}
}

func goToSlide(s NavState, index int) NavState {
	index = max(index, 0)
	direction := Still
	switch {
	case index > s.CurrentSlideIndex:
		direction = Forward
	case index < s.CurrentSlideIndex:
		direction = Backward
	}
	return NavState{CurrentSlideIndex: index, Direction: direction, IsPaused: s.IsPaused}
}

// normalize repairs values a hand-edited or older document may carry.
func normalize(s NavState) NavState {
	s.CurrentSlideIndex = max(s.CurrentSlideIndex, 0)
	if s.Direction < Backward || s.Direction > Forward {
		s.Direction = Still
	}
	s.SlideProgress = clampProgress(s.SlideProgress)
	return s
}

// NavStore tracks the current slide of the story player. The upper bound of
// the slide index is left to the caller, which knows the slide count.
type NavStore struct {
	mu      sync.RWMutex
	state   NavState
	storage persist.Storage
	logger  *zap.Logger
}

func NewNavStore(storage persist.Storage, logger *zap.Logger) *NavStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavStore{storage: storage, logger: logger}
}

// Load replaces the current state with the stored one, migrating older
// documents. Malformed documents fall back to defaults. A document with an
// unknown version also leaves defaults in place but is reported as an error.
func (s *NavStore) Load(ctx context.Context) error {
	var loaded NavState
	found, err := navCodec.Load(ctx, s.storage, NavKey, &loaded)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NavState{}

	switch {
	case errors.Is(err, persist.ErrMalformed):
		s.logger.Warn("discarding malformed story navigation state", zap.Error(err))
		return nil
	case err != nil:
		return err
	case found:
		s.state = normalize(loaded)
	}
	return nil
}

func (s *NavStore) Snapshot() NavState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *NavStore) NextSlide(ctx context.Context) NavState {
	return s.update(ctx, nextSlide)
}

func (s *NavStore) PreviousSlide(ctx context.Context) NavState {
	return s.update(ctx, previousSlide)
}

func (s *NavStore) GoToSlide(ctx context.Context, index int) NavState {
	return s.update(ctx, func(cur NavState) NavState { return goToSlide(cur, index) })
}

func (s *NavStore) TogglePause(ctx context.Context) NavState {
	return s.update(ctx, func(cur NavState) NavState {
		cur.IsPaused = !cur.IsPaused
		return cur
	})
}

func (s *NavStore) SetSlideProgress(ctx context.Context, progress float64) NavState {
	return s.update(ctx, func(cur NavState) NavState {
		cur.SlideProgress = clampProgress(progress)
		return cur
	})
}

// SetProgressOverride sets progress from a manual control such as a scrubber,
// independent of the automatic slide timer.
func (s *NavStore) SetProgressOverride(ctx context.Context, progress float64) NavState {
	return s.SetSlideProgress(ctx, progress)
}

func (s *NavStore) Reset(ctx context.Context) NavState {
	return s.update(ctx, func(NavState) NavState { return NavState{} })
}

func (s *NavStore) update(ctx context.Context, transition func(NavState) NavState) NavState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = transition(s.state)
	if err := navCodec.Save(ctx, s.storage, NavKey, s.state); err != nil {
		s.logger.Warn("persisting story navigation state", zap.String("key", NavKey), zap.Error(err))
	}
	return s.state
}
