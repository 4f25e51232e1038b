package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompter/internal/config"
	"prompter/internal/persist"
	"prompter/internal/story"
)

func TestRegistry_IsolatesUsers(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemoryStorage(0)
	r := NewRegistry(storage, RegistryOptions{})

	alice := r.Get(ctx, "alice")
	bob := r.Get(ctx, "bob")
	assert.Same(t, alice, r.Get(ctx, "alice"))

	alice.Content.SetText(ctx, "alice's script")
	assert.Equal(t, DefaultContent().Text, bob.Content.Snapshot().Text)

	raw, err := storage.Get(ctx, "alice:"+ContentKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "alice's script")

	assert.ElementsMatch(t, []string{"alice", "bob"}, r.Users())
}

func TestRegistry_LoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemoryStorage(0)
	require.NoError(t, storage.Set(ctx, "alice:"+ContentKey, []byte(`{"text":"saved","bgUrl":"","musicUrl":"","isReadOnly":true}`)))
	require.NoError(t, storage.Set(ctx, "alice:"+story.NavKey, []byte(`{"currentSlide":3,"isPaused":true,"slideProgress":0.5}`)))

	ws := NewRegistry(storage, RegistryOptions{}).Get(ctx, "alice")
	assert.Equal(t, "saved", ws.Content.Snapshot().Text)
	assert.True(t, ws.Content.Snapshot().ReadOnly)

	nav := ws.Story.Snapshot()
	assert.Equal(t, 3, nav.CurrentSlideIndex)
	assert.Equal(t, story.Still, nav.Direction)
	assert.True(t, nav.IsPaused)
}

func TestRegistry_RehydrateAfterExternalChange(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemoryStorage(0)
	r := NewRegistry(storage, RegistryOptions{})
	ws := r.Get(ctx, "alice")

	require.NoError(t, ws.Config.SetTypography(ctx, Partial{"fontSize": 60}))
	require.True(t, ws.Config.CanUndo())

	require.NoError(t, storage.Set(ctx, "alice:"+ContentKey, []byte(`{"text":"edited elsewhere"}`)))
	r.Rehydrate(ctx, "alice:"+ContentKey)
	r.Rehydrate(ctx, "carol:"+ContentKey)
	r.Rehydrate(ctx, "no-prefix")

	assert.Equal(t, "edited elsewhere", ws.Content.Snapshot().Text)
	assert.Equal(t, 60.0, ws.Config.Snapshot().Config.Typography.FontSize)
	assert.False(t, ws.Config.CanUndo())
	assert.ElementsMatch(t, []string{"alice"}, r.Users())
}

func TestWorkspace_LoadPreset(t *testing.T) {
	ctx := context.Background()
	presets, err := config.ParsePresets([]byte("version: 1\npresets:\n  - name: vlog\n    animations:\n      scrollSpeed: 1.5\n"))
	require.NoError(t, err)

	ws := NewRegistry(persist.NewMemoryStorage(0), RegistryOptions{Presets: presets}).Get(ctx, "alice")
	require.NoError(t, ws.LoadPreset(ctx, "VLOG"))
	assert.Equal(t, 1.5, ws.Config.Snapshot().Config.Animations.ScrollSpeed)
	assert.Equal(t, []string{"vlog"}, ws.PresetNames())

	assert.ErrorIs(t, ws.LoadPreset(ctx, "missing"), ErrUnknownPreset)
}

func TestWorkspace_WithoutPresets(t *testing.T) {
	ws := NewRegistry(persist.NewMemoryStorage(0), RegistryOptions{}).Get(context.Background(), "alice")
	assert.ErrorIs(t, ws.LoadPreset(context.Background(), "broadcast"), ErrUnknownPreset)
	assert.Empty(t, ws.PresetNames())
}
