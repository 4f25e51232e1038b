package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"prompter/internal/config"
	"prompter/internal/store"
)

type mockStore struct {
	scripts      []store.ScriptInput
	removeCalls  [][]string
	ensureCalled bool
	failTitle    string
	hashes       map[string]string
	removed      int64
}

func (m *mockStore) EnsureSchema(ctx context.Context) error {
	m.ensureCalled = true
	return nil
}

func (m *mockStore) GetScriptHashes(ctx context.Context, ownerID string) (map[string]string, error) {
	if m.hashes == nil {
		return map[string]string{}, nil
	}
	return m.hashes, nil
}

func (m *mockStore) UpsertImportedScript(ctx context.Context, in store.ScriptInput) error {
	if m.failTitle != "" && in.Title == m.failTitle {
		return errors.New("forced error")
	}
	m.scripts = append(m.scripts, in)
	return nil
}

func (m *mockStore) RemoveStaleScripts(ctx context.Context, ownerID string, currentSourceFiles []string) (int64, error) {
	m.removeCalls = append(m.removeCalls, currentSourceFiles)
	return m.removed, nil
}

func (m *mockStore) titles() []string {
	titles := make([]string, 0, len(m.scripts))
	for _, s := range m.scripts {
		titles = append(titles, s.Title)
	}
	sort.Strings(titles)
	return titles
}

func (m *mockStore) byTitle(title string) (store.ScriptInput, bool) {
	for _, s := range m.scripts {
		if s.Title == title {
			return s, true
		}
	}
	return store.ScriptInput{}, false
}

func TestRun_BasicImport(t *testing.T) {
	db := &mockStore{}

	result, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !db.ensureCalled {
		t.Fatalf("expected ensure schema")
	}
	want := []string{"Keynote Opening", "Quick Update"}
	if !reflect.DeepEqual(db.titles(), want) {
		t.Fatalf("expected %v, got %v", want, db.titles())
	}
	if result.ScriptsUpserted != 2 {
		t.Fatalf("expected 2 scripts upserted, got %d", result.ScriptsUpserted)
	}
	if result.FilesSkipped != 1 {
		t.Fatalf("expected untitled file skipped, got %d", result.FilesSkipped)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error(), "neon") {
		t.Fatalf("expected unknown preset error, got %v", result.Errors)
	}
}

func TestRun_ScriptFields(t *testing.T) {
	db := &mockStore{}

	if _, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	keynote, ok := db.byTitle("Keynote Opening")
	if !ok {
		t.Fatalf("expected keynote imported")
	}
	if keynote.OwnerID != "alice" {
		t.Fatalf("expected owner alice, got %q", keynote.OwnerID)
	}
	if !reflect.DeepEqual(keynote.Tags, []string{"keynote", "stage"}) {
		t.Fatalf("unexpected tags: %#v", keynote.Tags)
	}
	if keynote.BackgroundURL != "https://cdn.example.com/stage.jpg" {
		t.Fatalf("unexpected background: %q", keynote.BackgroundURL)
	}
	if keynote.SourceHash == "" || keynote.SourceFile == "" {
		t.Fatalf("expected source file and hash")
	}
	if !strings.HasPrefix(keynote.Content, "Good morning everyone") {
		t.Fatalf("unexpected content: %q", keynote.Content)
	}

	var appearance struct {
		Typography struct {
			FontSize   float64 `json:"fontSize"`
			FontFamily string  `json:"fontFamily"`
		} `json:"typography"`
		Layout struct {
			MirrorHorizontal bool `json:"mirrorHorizontal"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(keynote.Config, &appearance); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if appearance.Typography.FontSize != 64 || !appearance.Layout.MirrorHorizontal {
		t.Fatalf("expected broadcast preset applied, got %+v", appearance)
	}
	if appearance.Typography.FontFamily == "" {
		t.Fatalf("expected defaults kept for fields the preset omits")
	}

	quick, ok := db.byTitle("Quick Update")
	if !ok {
		t.Fatalf("expected heading script imported")
	}
	if quick.Config != nil {
		t.Fatalf("expected no config without preset, got %s", quick.Config)
	}
	if quick.Content != "The release moves to Thursday." {
		t.Fatalf("unexpected content: %q", quick.Content)
	}
}

func TestRun_ExcludesAndNonMarkdown(t *testing.T) {
	db := &mockStore{}

	if _, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := db.byTitle("Work In Progress"); ok {
		t.Fatalf("expected excluded directory skipped")
	}
	for _, file := range db.removeCalls[0] {
		if strings.HasSuffix(file, ".txt") {
			t.Fatalf("expected non-markdown files ignored, got %s", file)
		}
	}
}

func TestRun_RequiresOwner(t *testing.T) {
	cfg := testProjectConfig()
	cfg.Scripts.Owner = "  "

	if _, err := Run(context.Background(), cfg, testPresets(t), &mockStore{}, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_ContinuesOnError(t *testing.T) {
	db := &mockStore{failTitle: "Keynote Opening"}

	result, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected upsert and preset errors, got %v", result.Errors)
	}
	if result.ScriptsUpserted != 1 {
		t.Fatalf("expected remaining script imported, got %d", result.ScriptsUpserted)
	}
}

func TestRun_RemoveStaleScripts(t *testing.T) {
	db := &mockStore{removed: 3}

	result, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(db.removeCalls) != 1 {
		t.Fatalf("expected one remove stale call")
	}
	if len(db.removeCalls[0]) != 4 {
		t.Fatalf("expected every walked markdown file, got %v", db.removeCalls[0])
	}
	if result.ScriptsRemoved != 3 {
		t.Fatalf("expected 3 removed, got %d", result.ScriptsRemoved)
	}
}

func TestRun_IncrementalSkip(t *testing.T) {
	path := filepath.Join("testdata", "scripts", "keynote.md")
	hash, err := computeHash(path)
	if err != nil {
		t.Fatalf("compute hash: %v", err)
	}
	db := &mockStore{hashes: map[string]string{path: hash}}

	result, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := db.byTitle("Keynote Opening"); ok {
		t.Fatalf("expected unchanged keynote skipped")
	}
	if result.FilesSkipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", result.FilesSkipped)
	}
}

func TestRun_FullImportOverridesHashes(t *testing.T) {
	path := filepath.Join("testdata", "scripts", "keynote.md")
	hash, err := computeHash(path)
	if err != nil {
		t.Fatalf("compute hash: %v", err)
	}
	db := &mockStore{hashes: map[string]string{path: hash}}

	if _, err := Run(context.Background(), testProjectConfig(), testPresets(t), db, Options{Full: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := db.byTitle("Keynote Opening"); !ok {
		t.Fatalf("expected keynote imported in full mode")
	}
}

func TestIsExcluded(t *testing.T) {
	excludes := []string{filepath.Join("scripts", "drafts")}
	cases := []struct {
		path string
		want bool
	}{
		{path: filepath.Join("scripts", "drafts"), want: true},
		{path: filepath.Join("scripts", "drafts", "a.md"), want: true},
		{path: filepath.Join("scripts", "drafts-old", "a.md"), want: false},
		{path: filepath.Join("scripts", "a.md"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			if got := isExcluded(tc.path, excludes); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func testProjectConfig() *config.ProjectConfig {
	return &config.ProjectConfig{
		Project: "test",
		Version: 1,
		Scripts: config.ScriptsConfig{
			Owner:   "alice",
			Paths:   []string{filepath.Join("testdata", "scripts")},
			Exclude: []string{filepath.Join("testdata", "scripts", "drafts")},
		},
	}
}

func testPresets(t *testing.T) *config.Presets {
	t.Helper()
	presets, err := config.ParsePresets([]byte(`version: 1
presets:
  - name: broadcast
    typography:
      fontSize: 64
    layout:
      mirrorHorizontal: true
`))
	if err != nil {
		t.Fatalf("parse presets: %v", err)
	}
	return presets
}
