package state

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"prompter/internal/persist"
)

const ContentKey = "teleprompter-content"

const defaultText = "Welcome to Prompter.\n\nPaste or type your script here, then press play to start scrolling."

type ContentState struct {
	Text          string `json:"text"`
	BackgroundURL string `json:"bgUrl"`
	MusicURL      string `json:"musicUrl"`
	ReadOnly      bool   `json:"isReadOnly"`
}

// ContentPatch carries the fields to overwrite. Nil fields are left as is.
type ContentPatch struct {
	Text          *string `json:"text,omitempty"`
	BackgroundURL *string `json:"bgUrl,omitempty"`
	MusicURL      *string `json:"musicUrl,omitempty"`
	ReadOnly      *bool   `json:"isReadOnly,omitempty"`
}

func DefaultContent() ContentState {
	return ContentState{Text: defaultText}
}

func applyContentPatch(s ContentState, p ContentPatch) ContentState {
	if p.Text != nil {
		s.Text = *p.Text
	}
	if p.BackgroundURL != nil {
		s.BackgroundURL = *p.BackgroundURL
	}
	if p.MusicURL != nil {
		s.MusicURL = *p.MusicURL
	}
	if p.ReadOnly != nil {
		s.ReadOnly = *p.ReadOnly
	}
	return s
}

// resetContent restores text and media, keeping the read-only flag.
func resetContent(s ContentState) ContentState {
	d := DefaultContent()
	d.ReadOnly = s.ReadOnly
	return d
}

// resetMedia restores background and music only.
func resetMedia(s ContentState) ContentState {
	d := DefaultContent()
	s.BackgroundURL = d.BackgroundURL
	s.MusicURL = d.MusicURL
	return s
}

// ContentStore holds the script text and media URLs of one workspace. Every
// mutation is written through to storage; a failed write is logged and the
// in-memory change is kept.
type ContentStore struct {
	mu      sync.RWMutex
	state   ContentState
	storage persist.Storage
	logger  *zap.Logger
}

func NewContentStore(storage persist.Storage, logger *zap.Logger) *ContentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentStore{state: DefaultContent(), storage: storage, logger: logger}
}

// Load replaces the current state with the stored one. Absent or malformed
// values fall back to defaults; other storage errors are returned after the
// fallback is applied.
func (s *ContentStore) Load(ctx context.Context) error {
	loaded := DefaultContent()
	found, err := persist.LoadJSON(ctx, s.storage, ContentKey, &loaded)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, persist.ErrMalformed):
		s.logger.Warn("discarding malformed content state", zap.Error(err))
		s.state = DefaultContent()
		return nil
	case err != nil:
		s.state = DefaultContent()
		return err
	case !found:
		s.state = DefaultContent()
		return nil
	}
	s.state = loaded
	return nil
}

func (s *ContentStore) Snapshot() ContentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ContentStore) SetText(ctx context.Context, text string) {
	s.SetAll(ctx, ContentPatch{Text: &text})
}

func (s *ContentStore) SetBgURL(ctx context.Context, url string) {
	s.SetAll(ctx, ContentPatch{BackgroundURL: &url})
}

func (s *ContentStore) SetMusicURL(ctx context.Context, url string) {
	s.SetAll(ctx, ContentPatch{MusicURL: &url})
}

func (s *ContentStore) SetReadOnly(ctx context.Context, readOnly bool) {
	s.SetAll(ctx, ContentPatch{ReadOnly: &readOnly})
}

func (s *ContentStore) SetAll(ctx context.Context, patch ContentPatch) ContentState {
	return s.update(ctx, func(cur ContentState) ContentState { return applyContentPatch(cur, patch) })
}

func (s *ContentStore) Reset(ctx context.Context) ContentState {
	return s.update(ctx, func(ContentState) ContentState { return DefaultContent() })
}

func (s *ContentStore) ResetContent(ctx context.Context) ContentState {
	return s.update(ctx, resetContent)
}

func (s *ContentStore) ResetMedia(ctx context.Context) ContentState {
	return s.update(ctx, resetMedia)
}

func (s *ContentStore) update(ctx context.Context, transition func(ContentState) ContentState) ContentState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = transition(s.state)
	if err := persist.SaveJSON(ctx, s.storage, ContentKey, s.state); err != nil {
		s.logger.Warn("persisting content state", zap.String("key", ContentKey), zap.Error(err))
	}
	return s.state
}
