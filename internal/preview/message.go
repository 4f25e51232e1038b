package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"prompter/internal/story"
)

const MessageUpdateStory = "UPDATE_STORY"

var ErrInvalidMessage = errors.New("invalid story message")

type StoryUpdate struct {
	Slides           []story.Slide `json:"slides"`
	ActiveSlideIndex int           `json:"activeSlideIndex"`
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type rawPayload struct {
	Slides           json.RawMessage `json:"slides"`
	ActiveSlideIndex int             `json:"activeSlideIndex"`
}

// ParseStoryMessage decodes a builder-to-preview message. Slides must be an
// array of at most maxSlides entries; the active index is clamped into range.
func ParseStoryMessage(data []byte, maxSlides int) (*StoryUpdate, error) {
	if maxSlides <= 0 {
		maxSlides = story.MaxSlides
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if env.Type != MessageUpdateStory {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidMessage, env.Type)
	}

	var payload rawPayload
	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidMessage)
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrInvalidMessage, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(payload.Slides), []byte("[")) {
		return nil, fmt.Errorf("%w: slides must be an array", ErrInvalidMessage)
	}

	var slides []story.Slide
	if err := json.Unmarshal(payload.Slides, &slides); err != nil {
		return nil, fmt.Errorf("%w: slides: %v", ErrInvalidMessage, err)
	}
	if len(slides) > maxSlides {
		return nil, fmt.Errorf("%w: %d slides exceeds the maximum of %d", ErrInvalidMessage, len(slides), maxSlides)
	}

	active := max(payload.ActiveSlideIndex, 0)
	if len(slides) == 0 {
		active = 0
	} else if active >= len(slides) {
		active = len(slides) - 1
	}

	return &StoryUpdate{Slides: slides, ActiveSlideIndex: active}, nil
}

// PreviewState is what the preview surface renders. Error is set after a
// rejected message and cleared by the next valid one; the last valid slides
// stay in place meanwhile.
type PreviewState struct {
	Slides           []story.Slide `json:"slides"`
	ActiveSlideIndex int           `json:"activeSlideIndex"`
	Error            string        `json:"error,omitempty"`
}

type Receiver struct {
	mu        sync.RWMutex
	maxSlides int
	state     PreviewState
}

func NewReceiver(maxSlides int) *Receiver {
	return &Receiver{maxSlides: maxSlides, state: PreviewState{Slides: []story.Slide{}}}
}

func (r *Receiver) Receive(data []byte) (PreviewState, error) {
	update, err := ParseStoryMessage(data, r.maxSlides)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.state.Error = err.Error()
		return r.state, err
	}
	r.state = PreviewState{Slides: update.Slides, ActiveSlideIndex: update.ActiveSlideIndex}
	return r.state, nil
}

func (r *Receiver) Snapshot() PreviewState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}
