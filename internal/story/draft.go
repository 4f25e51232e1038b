package story

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prompter/internal/persist"
)

const (
	DraftKey = "story-builder-draft"

	// MaxSlides is the largest story the builder and preview accept.
	MaxSlides = 20
)

var ErrTooManySlides = errors.New("too many slides")

type Slide struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title,omitempty"`
	Content    string  `json:"content,omitempty"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	Duration   float64 `json:"duration"`
	Transition string  `json:"transition,omitempty"`
}

type Draft struct {
	Title            string    `json:"title"`
	Slides           []Slide   `json:"slides"`
	ActiveSlideIndex int       `json:"activeSlideIndex"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// draftCodec versions saved builder drafts. Version 1 slides could lack ids.
var draftCodec = persist.Codec{
	Version: 2,
	Migrations: map[int]persist.Migration{
		1: assignSlideIDs,
	},
}

func assignSlideIDs(doc map[string]any) (map[string]any, error) {
	raw, ok := doc["slides"]
	if !ok || raw == nil {
		return doc, nil
	}
	slides, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("slides must be an array, got %T", raw)
	}
	for i, item := range slides {
		slide, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("slide %d must be an object", i)
		}
		if id, _ := slide["id"].(string); id == "" {
			slide["id"] = uuid.NewString()
		}
	}
	return doc, nil
}

// Validate checks the slide count and that the active index points at a slide.
func (d *Draft) Validate(maxSlides int) error {
	if maxSlides <= 0 {
		maxSlides = MaxSlides
	}
	if len(d.Slides) > maxSlides {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManySlides, len(d.Slides), maxSlides)
	}
	if d.ActiveSlideIndex < 0 || (len(d.Slides) > 0 && d.ActiveSlideIndex >= len(d.Slides)) {
		return fmt.Errorf("active slide index %d out of range", d.ActiveSlideIndex)
	}
	return nil
}

// DraftStore saves the story builder's work in progress.
type DraftStore struct {
	storage   persist.Storage
	maxSlides int
	now       func() time.Time
}

func NewDraftStore(storage persist.Storage, maxSlides int) *DraftStore {
	if maxSlides <= 0 {
		maxSlides = MaxSlides
	}
	return &DraftStore{storage: storage, maxSlides: maxSlides, now: time.Now}
}

// Load returns the saved draft, migrated to the current version. It reports
// false when no draft is saved.
func (s *DraftStore) Load(ctx context.Context) (*Draft, bool, error) {
	var draft Draft
	found, err := draftCodec.Load(ctx, s.storage, DraftKey, &draft)
	if err != nil || !found {
		return nil, false, err
	}
	if draft.Slides == nil {
		draft.Slides = []Slide{}
	}
	return &draft, true, nil
}

func (s *DraftStore) Save(ctx context.Context, draft *Draft) error {
	if err := draft.Validate(s.maxSlides); err != nil {
		return err
	}
	for i := range draft.Slides {
		if draft.Slides[i].ID == "" {
			draft.Slides[i].ID = uuid.NewString()
		}
	}
	if draft.Slides == nil {
		draft.Slides = []Slide{}
	}
	draft.UpdatedAt = s.now().UTC()
	return draftCodec.Save(ctx, s.storage, DraftKey, draft)
}

func (s *DraftStore) Clear(ctx context.Context) error {
	err := s.storage.Remove(ctx, DraftKey)
	if err != nil && !errors.Is(err, persist.ErrNotFound) {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
