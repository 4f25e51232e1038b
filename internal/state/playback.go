package state

import "sync"

// DefaultScrollSpeed is the scroll velocity in pixels per second.
const DefaultScrollSpeed = 30.0

// PlaybackState is runtime-only and never persisted.
type PlaybackState struct {
	IsPlaying      bool    `json:"isPlaying"`
	Elapsed        float64 `json:"elapsed"`
	ScrollSpeed    float64 `json:"scrollSpeed"`
	ScrollPosition float64 `json:"scrollPosition"`
}

func DefaultPlayback() PlaybackState {
	return PlaybackState{ScrollSpeed: DefaultScrollSpeed}
}

type PlaybackStore struct {
	mu    sync.RWMutex
	state PlaybackState
}

func NewPlaybackStore() *PlaybackStore {
	return &PlaybackStore{state: DefaultPlayback()}
}

func (s *PlaybackStore) Snapshot() PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *PlaybackStore) Play() PlaybackState {
	return s.update(func(p *PlaybackState) { p.IsPlaying = true })
}

func (s *PlaybackStore) Pause() PlaybackState {
	return s.update(func(p *PlaybackState) { p.IsPlaying = false })
}

func (s *PlaybackStore) Toggle() PlaybackState {
	return s.update(func(p *PlaybackState) { p.IsPlaying = !p.IsPlaying })
}

func (s *PlaybackStore) SetElapsed(seconds float64) PlaybackState {
	return s.update(func(p *PlaybackState) { p.Elapsed = max(seconds, 0) })
}

func (s *PlaybackStore) SetScrollSpeed(pxPerSecond float64) PlaybackState {
	return s.update(func(p *PlaybackState) { p.ScrollSpeed = pxPerSecond })
}

func (s *PlaybackStore) SetScrollPosition(px float64) PlaybackState {
	return s.update(func(p *PlaybackState) { p.ScrollPosition = max(px, 0) })
}

// Tick advances elapsed time and scroll position by dt seconds while playing.
func (s *PlaybackStore) Tick(dt float64) PlaybackState {
	return s.update(func(p *PlaybackState) {
		if !p.IsPlaying || dt <= 0 {
			return
		}
		p.Elapsed += dt
		p.ScrollPosition = max(p.ScrollPosition+p.ScrollSpeed*dt, 0)
	})
}

func (s *PlaybackStore) Reset() PlaybackState {
	return s.update(func(p *PlaybackState) { *p = DefaultPlayback() })
}

func (s *PlaybackStore) update(mutate func(*PlaybackState)) PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
	return s.state
}
