package preview

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slidesJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":"s%d","type":"text","content":"slide %d","duration":3}`, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestParseStoryMessage(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		wantErr    bool
		wantSlides int
		wantActive int
	}{
		{
			name:       "valid",
			msg:        `{"type":"UPDATE_STORY","payload":{"slides":` + slidesJSON(3) + `,"activeSlideIndex":1}}`,
			wantSlides: 3,
			wantActive: 1,
		},
		{
			name:       "exactly the maximum",
			msg:        `{"type":"UPDATE_STORY","payload":{"slides":` + slidesJSON(20) + `}}`,
			wantSlides: 20,
		},
		{
			name:       "active index clamped",
			msg:        `{"type":"UPDATE_STORY","payload":{"slides":` + slidesJSON(2) + `,"activeSlideIndex":9}}`,
			wantSlides: 2,
			wantActive: 1,
		},
		{
			name:       "empty story",
			msg:        `{"type":"UPDATE_STORY","payload":{"slides":[]}}`,
			wantSlides: 0,
		},
		{name: "too many slides", msg: `{"type":"UPDATE_STORY","payload":{"slides":` + slidesJSON(21) + `}}`, wantErr: true},
		{name: "slides not an array", msg: `{"type":"UPDATE_STORY","payload":{"slides":{"0":{}}}}`, wantErr: true},
		{name: "slides missing", msg: `{"type":"UPDATE_STORY","payload":{}}`, wantErr: true},
		{name: "payload missing", msg: `{"type":"UPDATE_STORY"}`, wantErr: true},
		{name: "wrong type", msg: `{"type":"RESIZE","payload":{"slides":[]}}`, wantErr: true},
		{name: "not json", msg: `UPDATE_STORY`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := ParseStoryMessage([]byte(tt.msg), 0)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidMessage))
				return
			}
			require.NoError(t, err)
			assert.Len(t, update.Slides, tt.wantSlides)
			assert.Equal(t, tt.wantActive, update.ActiveSlideIndex)
		})
	}
}

func TestParseStoryMessage_CustomMaximum(t *testing.T) {
	_, err := ParseStoryMessage([]byte(`{"type":"UPDATE_STORY","payload":{"slides":`+slidesJSON(4)+`}}`), 3)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestReceiver(t *testing.T) {
	r := NewReceiver(0)
	assert.Empty(t, r.Snapshot().Slides)

	state, err := r.Receive([]byte(`{"type":"UPDATE_STORY","payload":{"slides":` + slidesJSON(2) + `,"activeSlideIndex":1}}`))
	require.NoError(t, err)
	assert.Len(t, state.Slides, 2)
	assert.Empty(t, state.Error)

	state, err = r.Receive([]byte(`{"type":"UPDATE_STORY","payload":{"slides":"oops"}}`))
	require.Error(t, err)
	assert.Contains(t, state.Error, "slides must be an array")
	assert.Len(t, state.Slides, 2, "last valid story stays visible")

	state, err = r.Receive([]byte(`{"type":"UPDATE_STORY","payload":{"slides":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, state.Error)
	assert.Empty(t, state.Slides)
	assert.Equal(t, state, r.Snapshot())
}
